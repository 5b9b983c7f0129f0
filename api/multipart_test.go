package api

import (
	"bytes"
	"errors"
	"mime/multipart"
	"testing"
)

func multipartReaderFor(t *testing.T, fields map[string][]byte) *multipart.Reader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, payload := range fields {
		fw, err := mw.CreateFormFile(name, name)
		if err != nil {
			t.Fatalf("CreateFormFile error: %v", err)
		}
		if _, err := fw.Write(payload); err != nil {
			t.Fatalf("part write error: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close error: %v", err)
	}
	return multipart.NewReader(&buf, mw.Boundary())
}

var acceptedFields = map[string]struct{}{"data": {}, "file": {}}

func TestCollectOnlyNamedPicksAcceptedPart(t *testing.T) {
	mr := multipartReaderFor(t, map[string][]byte{"data": []byte("payload bytes")})
	got, err := collectOnlyNamed(mr, acceptedFields, 1<<20)
	if err != nil {
		t.Fatalf("collectOnlyNamed error: %v", err)
	}
	if string(got) != "payload bytes" {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestCollectOnlyNamedSkipsUnrelatedParts(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, part := range []struct{ name, payload string }{
		{"metadata", "ignore me"},
		{"file", "the real payload"},
	} {
		fw, err := mw.CreateFormFile(part.name, part.name)
		if err != nil {
			t.Fatalf("CreateFormFile error: %v", err)
		}
		if _, err := fw.Write([]byte(part.payload)); err != nil {
			t.Fatalf("part write error: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("multipart close error: %v", err)
	}

	got, err := collectOnlyNamed(multipart.NewReader(&buf, mw.Boundary()), acceptedFields, 1<<20)
	if err != nil {
		t.Fatalf("collectOnlyNamed error: %v", err)
	}
	if string(got) != "the real payload" {
		t.Fatalf("payload mismatch: %q", got)
	}
}

func TestCollectOnlyNamedMissingField(t *testing.T) {
	mr := multipartReaderFor(t, map[string][]byte{"unrelated": []byte("x")})
	if _, err := collectOnlyNamed(mr, acceptedFields, 1<<20); !errors.Is(err, errMissingField) {
		t.Fatalf("expected errMissingField, got %v", err)
	}
}

func TestCollectOnlyNamedEnforcesBound(t *testing.T) {
	mr := multipartReaderFor(t, map[string][]byte{"data": bytes.Repeat([]byte{'y'}, 100)})
	if _, err := collectOnlyNamed(mr, acceptedFields, 99); !errors.Is(err, errPayloadTooLarge) {
		t.Fatalf("expected errPayloadTooLarge, got %v", err)
	}
}

func TestCollectOnlyNamedExactBoundAccepted(t *testing.T) {
	payload := bytes.Repeat([]byte{'z'}, 64)
	mr := multipartReaderFor(t, map[string][]byte{"data": payload})
	got, err := collectOnlyNamed(mr, acceptedFields, 64)
	if err != nil {
		t.Fatalf("collectOnlyNamed error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch at exact bound")
	}
}
