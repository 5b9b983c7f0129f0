package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ipfs/go-cid"

	"github.com/quartzite/blockgate/internal/logging"
	"github.com/quartzite/blockgate/internal/service"
)

type rmRecord struct {
	Error string `json:"Error"`
	Hash  string `json:"Hash"`
}

func boolParam(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// handleRm implements the batch removal pipeline: parse every identifier
// up front, issue all removals concurrently, then stream one result line
// per input in input order regardless of completion order.
func handleRm(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		args := q["arg"]
		force := boolParam(q.Get("force"))
		quiet := boolParam(q.Get("quiet"))

		if len(args) == 0 {
			writeErr(w, http.StatusBadRequest, "at least one block identifier is required")
			return
		}

		// a single malformed identifier rejects the whole batch before
		// any removal is issued
		cids := make([]cid.Cid, 0, len(args))
		for _, a := range args {
			c, err := cid.Decode(a)
			if err != nil {
				writeErr(w, http.StatusBadRequest, err.Error())
				return
			}
			cids = append(cids, c)
		}

		ctx := logging.WithPrefix(r.Context(), logging.ServerPrefix)
		slots := removeAll(ctx, svc, cids)

		w.Header().Set("Content-Type", "application/json")
		flusher, _ := w.(http.Flusher)
		log := logging.From(ctx)

		for i, slot := range slots {
			var rmErr error
			select {
			case rmErr = <-slot:
			case <-ctx.Done():
				return
			}

			rec := rmRecord{Hash: cids[i].String()}
			if rmErr != nil {
				// force hides the message from the client, never from
				// the server log
				log.Warn().Str("cid", rec.Hash).Err(rmErr).Msg("block removal failed")
				if !force {
					rec.Error = rmErr.Error()
				}
			}

			line := []byte{'\n'}
			if !quiet {
				buf, err := json.Marshal(rec)
				if err != nil {
					// fatal to the stream, not to the process
					log.Error().Err(err).Msg("result serialization failed")
					return
				}
				line = append(buf, '\n')
			}
			if _, err := w.Write(line); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// removeAll launches one removal per identifier immediately. Each slot is
// bound to its input position; slots settle in arbitrary order and are
// drained by position. Buffered channels keep abandoned slots from
// leaking their goroutines when the caller disconnects mid-stream.
func removeAll(ctx context.Context, svc *service.Service, cids []cid.Cid) []<-chan error {
	slots := make([]<-chan error, len(cids))
	for i, c := range cids {
		slot := make(chan error, 1)
		slots[i] = slot
		go func(c cid.Cid, slot chan<- error) {
			slot <- svc.Remove(ctx, c)
		}(c, slot)
	}
	return slots
}
