package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
)

var (
	errMissingField    = errors.New("missing required multipart field")
	errPayloadTooLarge = errors.New("payload too large")
)

// collectOnlyNamed demultiplexes a multipart body and buffers the payload
// of the first part whose form name is in names, up to max bytes. The
// bound is enforced while buffering so an oversized upload is rejected
// without being read to the end.
func collectOnlyNamed(mr *multipart.Reader, names map[string]struct{}, max int64) ([]byte, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errMissingField
		}
		if err != nil {
			return nil, err
		}
		if _, ok := names[part.FormName()]; !ok {
			_ = part.Close()
			continue
		}

		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(part, max+1))
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		if n > max {
			return nil, errPayloadTooLarge
		}
		return buf.Bytes(), nil
	}
}
