package api

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgallion1/mdoffice/internal/config"
)

func testServer() *Server {
	cfg := config.Config{
		DefaultFormat: config.FormatPDF,
		Enabled: map[config.Format]bool{
			config.FormatPDF:  true,
			config.FormatDOCX: true,
			config.FormatXLSX: true,
			config.FormatPPTX: true,
		},
		SlideMaxBodyLines: 12,
		APIKey:            "test-key",
		MaxUploadBytes:    1 << 20,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(log, cfg)
}

func TestHealthIsPublic(t *testing.T) {
	srv := testServer()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestConvertRequiresAuth(t *testing.T) {
	srv := testServer()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/convert", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/convert", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad key, got %d", rec.Code)
	}
}

func TestFormats(t *testing.T) {
	srv := testServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	req.Header.Set("Authorization", "Bearer test-key")
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"pptx":true`)) {
		t.Errorf("expected pptx availability in response, got %s", rec.Body.String())
	}
}

func TestConvert_PPTXCreate(t *testing.T) {
	srv := testServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "talk.md")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	io.WriteString(fw, "## Intro\n\nhello\n\n## End\n\nbye\n")
	mw.WriteField("format", "pptx")
	mw.WriteField("mode", "create")
	mw.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Authorization", "Bearer test-key")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="talk.pptx"` {
		t.Errorf("unexpected disposition %q", got)
	}
	if rec.Header().Get("X-Mdoffice-Summary") == "" {
		t.Error("expected a summary header")
	}
	if rec.Body.Len() == 0 {
		t.Error("expected artifact bytes in response body")
	}
}

func TestConvert_ReplaceWithoutExistingRejected(t *testing.T) {
	srv := testServer()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "talk.md")
	io.WriteString(fw, "## Intro\n\nhello\n")
	mw.WriteField("format", "pptx")
	mw.WriteField("mode", "replace")
	mw.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Authorization", "Bearer test-key")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
