package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quartzite/blockgate/api"
	"github.com/quartzite/blockgate/configuration"
)

func main() {
	root := &cobra.Command{
		Use:           "blockgate",
		Short:         "Blockgate CLI",
		Long:          "Content-addressed block node command-line interface.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var daemonMem bool
	cmdDaemon := &cobra.Command{
		Use:   "daemon",
		Short: "Run the block node with its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.LoadUserConfig()
			if daemonMem {
				conf.InMemory = true
			}
			return api.Serve(conf)
		},
	}
	cmdDaemon.Flags().BoolVarP(&daemonMem, "mem", "m", false, "use in-mem blockstore; defaults to on-disk")
	root.AddCommand(cmdDaemon)

	cmdBlock := &cobra.Command{Use: "block", Short: "Block operations against a running node"}

	var getArg string
	cmdBlockGet := &cobra.Command{
		Use:   "get",
		Short: "Fetch a raw block; writes the bytes to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			blockGet(getArg)
			return nil
		},
	}
	cmdBlockGet.Flags().StringVarP(&getArg, "cid", "c", "", "identifier of the block to fetch")
	_ = cmdBlockGet.MarkFlagRequired("cid")
	cmdBlock.AddCommand(cmdBlockGet)

	var putIn, putFormat, putMhType, putVersion string
	cmdBlockPut := &cobra.Command{
		Use:   "put",
		Short: "Store a file's bytes as a single block; prints the identifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			blockPut(putIn, putFormat, putMhType, putVersion)
			return nil
		},
	}
	cmdBlockPut.Flags().StringVarP(&putIn, "in", "i", "", "input file path")
	cmdBlockPut.Flags().StringVarP(&putFormat, "format", "f", "", "codec name (dag-pb, dag-cbor, dag-json, raw)")
	cmdBlockPut.Flags().StringVarP(&putMhType, "mhtype", "t", "", "hash function (sha2-256, sha2-512)")
	cmdBlockPut.Flags().StringVarP(&putVersion, "version", "v", "", "cid version (0 or 1)")
	_ = cmdBlockPut.MarkFlagRequired("in")
	cmdBlock.AddCommand(cmdBlockPut)

	var rmForce, rmQuiet bool
	cmdBlockRm := &cobra.Command{
		Use:   "rm <cid>...",
		Short: "Remove one or more blocks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blockRm(args, rmForce, rmQuiet)
			return nil
		},
	}
	cmdBlockRm.Flags().BoolVar(&rmForce, "force", false, "do not report per-block removal errors")
	cmdBlockRm.Flags().BoolVarP(&rmQuiet, "quiet", "q", false, "suppress per-block output")
	cmdBlock.AddCommand(cmdBlockRm)

	var statArg string
	cmdBlockStat := &cobra.Command{
		Use:   "stat",
		Short: "Print the identifier and size of a block",
		RunE: func(cmd *cobra.Command, args []string) error {
			blockStat(statArg)
			return nil
		},
	}
	cmdBlockStat.Flags().StringVarP(&statArg, "cid", "c", "", "identifier of the block to stat")
	_ = cmdBlockStat.MarkFlagRequired("cid")
	cmdBlock.AddCommand(cmdBlockStat)

	root.AddCommand(cmdBlock)

	cmdRepoStat := &cobra.Command{
		Use:   "stats",
		Short: "Print block count and total bytes of the node's store",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoStat()
			return nil
		},
	}
	root.AddCommand(cmdRepoStat)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
