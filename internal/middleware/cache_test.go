package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCaptureWriterWithinLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 64}

	if _, err := cw.Write([]byte(`{"ok":true}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if cw.overflowed() {
		t.Error("overflowed() = true for a body within the limit")
	}
	if got := cw.buf.String(); got != `{"ok":true}` {
		t.Errorf("buffered body = %q, want full body", got)
	}
}

func TestCaptureWriterOversizedBodyIsNotCacheable(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

	if _, err := cw.Write([]byte("0123456789ABCDEFGHIJKLMNO")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if cw.buf.Len() != 10 {
		t.Errorf("buffer holds %d bytes, want capped at 10", cw.buf.Len())
	}
	if cw.size != 25 {
		t.Errorf("size = %d, want the full 25 written bytes", cw.size)
	}
	if !cw.overflowed() {
		t.Error("overflowed() = false; a truncated body would be cached")
	}
	// Client still receives everything.
	if rec.Body.Len() != 25 {
		t.Errorf("client received %d bytes, want 25", rec.Body.Len())
	}
}

func TestCaptureWriterOverflowAcrossWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

	// First write exactly fills the buffer; the second must still count.
	if _, err := cw.Write([]byte("0123456789")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if cw.overflowed() {
		t.Fatal("overflowed() = true after an exact fill")
	}
	if _, err := cw.Write([]byte("tail")); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if !cw.overflowed() {
		t.Error("overflowed() = false after writing past the limit")
	}
}

func TestCaptureWriterStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 0}
	cw.WriteHeader(http.StatusNotFound)
	if cw.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", cw.status)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Cache": {"MISS"}}
	body := []byte(`[{"id":1}]`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatal("decode failed")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", gotHdr.Get("Content-Type"))
	}
	if string(gotBody) != string(body) {
		t.Errorf("body = %q, want %q", gotBody, body)
	}
}

func TestDecodePayloadRejectsShortInput(t *testing.T) {
	if _, _, _, ok := decodePayload([]byte{1, 2, 3}); ok {
		t.Error("decodePayload accepted a payload shorter than its header")
	}
}
