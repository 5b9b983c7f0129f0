package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"

	daemon "github.com/coreos/go-systemd/v22/daemon"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"

	"github.com/quartzite/blockgate/configuration"
	"github.com/quartzite/blockgate/internal/block"
	"github.com/quartzite/blockgate/internal/logging"
	"github.com/quartzite/blockgate/internal/service"
	"github.com/quartzite/blockgate/internal/storage"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
func writeErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}

func storeErrCode(err error) int {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type putResponse struct {
	Key  string `json:"Key"`
	Size int    `json:"Size"`
}

type statResponse struct {
	Key  string `json:"Key"`
	Size int    `json:"Size"`
}

type repoStatResponse struct {
	NumObjects int   `json:"NumObjects"`
	RepoSize   int64 `json:"RepoSize"`
}

// NewMux builds the HTTP mux from the provided service.
func NewMux(svc *service.Service, conf configuration.Config) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v0/block/get", func(w http.ResponseWriter, r *http.Request) {
		c, err := cid.Decode(r.URL.Query().Get("arg"))
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		blk, err := svc.Get(r.Context(), c)
		if err != nil {
			writeErr(w, storeErrCode(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(blk.RawData())
	})

	mux.HandleFunc("/api/v0/block/put", handlePut(svc, conf))

	mux.HandleFunc("/api/v0/block/rm", handleRm(svc))

	mux.HandleFunc("/api/v0/block/stat", func(w http.ResponseWriter, r *http.Request) {
		arg := r.URL.Query().Get("arg")
		c, err := cid.Decode(arg)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		blk, err := svc.Get(r.Context(), c)
		if err != nil {
			writeErr(w, storeErrCode(err), err.Error())
			return
		}
		// size is measured from the retrieved bytes, the key echoes the
		// caller's own spelling of the identifier
		writeJSON(w, statResponse{Key: arg, Size: len(blk.RawData())})
	})

	mux.HandleFunc("/api/v0/repo/stat", func(w http.ResponseWriter, r *http.Request) {
		n, bytes, err := svc.Stats(r.Context())
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, repoStatResponse{NumObjects: n, RepoSize: bytes})
	})

	return mux
}

func handlePut(svc *service.Service, conf configuration.Config) http.HandlerFunc {
	accepted := make(map[string]struct{}, len(conf.MultipartFields))
	for _, f := range conf.MultipartFields {
		accepted[f] = struct{}{}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		q := r.URL.Query()
		opts := block.Options{
			Format:  q.Get("format"),
			MhType:  q.Get("mhtype"),
			Version: q.Get("version"),
		}
		// all three options are validated before a single body byte is read
		prefix, err := opts.Resolve()
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		boundary := params["boundary"]
		if boundary == "" {
			writeErr(w, http.StatusBadRequest, "missing 'boundary' on content-type")
			return
		}

		data, err := collectOnlyNamed(multipart.NewReader(r.Body, boundary), accepted, conf.MaxBlockSize)
		if err != nil {
			code := http.StatusBadRequest
			if errors.Is(err, errPayloadTooLarge) {
				code = http.StatusRequestEntityTooLarge
			}
			writeErr(w, code, err.Error())
			return
		}

		c, err := block.BuildCid(prefix, data)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		blk, err := blocks.NewBlockWithCid(data, c)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := svc.Put(r.Context(), blk); err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, putResponse{Key: c.String(), Size: len(data)})
	}
}

// Serve runs the HTTP API until the listener fails.
func Serve(conf *configuration.UserConfig) error {
	svc, err := service.New(conf)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	mux := NewMux(svc, configuration.Default())

	ctx := logging.WithPrefix(context.Background(), logging.DaemonPrefix)
	logging.From(ctx).Info().Int("port", conf.HttpPort).Msg("http api listening")
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	return http.ListenAndServe(fmt.Sprintf(":%d", conf.HttpPort), mux)
}
