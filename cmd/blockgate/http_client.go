package main

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/quartzite/blockgate/configuration"
)

func apiURL(p string, q url.Values) string {
	conf := configuration.LoadUserConfig()
	u := url.URL{
		Scheme:   "http",
		Host:     fmt.Sprintf("127.0.0.1:%d", conf.HttpPort),
		Path:     p,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func printBody(resp *http.Response) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	fmt.Println(strings.TrimSpace(string(body)))
}

func blockGet(arg string) {
	resp, err := http.Get(apiURL("/api/v0/block/get", url.Values{"arg": {arg}}))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		log.Fatal(err)
	}
}

func blockPut(inPath, format, mhtype, version string) {
	f, err := os.Open(inPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fw, err := mw.CreateFormFile("data", filepath.Base(inPath))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(fw, f); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}
	if mhtype != "" {
		q.Set("mhtype", mhtype)
	}
	if version != "" {
		q.Set("version", version)
	}
	resp, err := http.Post(apiURL("/api/v0/block/put", q), mw.FormDataContentType(), pr)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	printBody(resp)
}

func blockRm(args []string, force, quiet bool) {
	q := url.Values{}
	for _, a := range args {
		q.Add("arg", a)
	}
	if force {
		q.Set("force", "true")
	}
	if quiet {
		q.Set("quiet", "true")
	}
	resp, err := http.Post(apiURL("/api/v0/block/rm", q), "application/json", nil)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	// the server streams one line per identifier; print them as they come
	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		log.Fatal(err)
	}
}

func blockStat(arg string) {
	resp, err := http.Get(apiURL("/api/v0/block/stat", url.Values{"arg": {arg}}))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	printBody(resp)
}

func repoStat() {
	resp, err := http.Get(apiURL("/api/v0/repo/stat", nil))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	printBody(resp)
}
