package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdoffice/internal/config"
	"github.com/dgallion1/mdoffice/internal/convert"
	"github.com/dgallion1/mdoffice/internal/merge"
)

var contentTypes = map[config.Format]string{
	config.FormatPDF:  "application/pdf",
	config.FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	config.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	config.FormatPPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// handleConvert runs one conversion: a multipart form with the markdown
// "file", an optional "existing" artifact for append/replace, "format", and
// "mode". The response body is the artifact; the run summary travels in the
// X-Mdoffice-Summary header.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	format := s.cfg.DefaultFormat
	if v := r.FormValue("format"); v != "" {
		format = config.Format(v)
	}
	if _, ok := contentTypes[format]; !ok {
		jsonError(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}

	mode := merge.ModeCreate
	if v := r.FormValue("mode"); v != "" {
		mode = merge.Mode(v)
	}
	switch mode {
	case merge.ModeCreate, merge.ModeAppend, merge.ModeReplace:
	default:
		jsonError(w, fmt.Sprintf("unknown mode %q", mode), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	source, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(source)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	workDir, err := os.MkdirTemp("", "mdoffice-api-*")
	if err != nil {
		jsonError(w, "failed to create work dir", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(workDir)

	existingPath := ""
	if mode != merge.ModeCreate {
		existing, _, err := r.FormFile("existing")
		if err != nil {
			jsonError(w, fmt.Sprintf("%s mode requires an existing artifact", mode), http.StatusBadRequest)
			return
		}
		defer existing.Close()

		existingPath = filepath.Join(workDir, "existing."+string(format))
		if err := saveUpload(existing, existingPath, s.cfg.MaxUploadBytes); err != nil {
			jsonError(w, "failed to store existing artifact: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	outPath := filepath.Join(workDir, "out."+string(format))
	summary, err := convert.Run(s.cfg, string(source), convert.Options{
		Format:       format,
		Mode:         mode,
		ExistingPath: existingPath,
		OutputPath:   outPath,
	}, s.log)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, merge.ErrUnreadableArtifact) {
			status = http.StatusUnprocessableEntity
		}
		jsonError(w, err.Error(), status)
		return
	}

	out, err := os.Open(outPath)
	if err != nil {
		jsonError(w, "artifact missing after conversion", http.StatusInternalServerError)
		return
	}
	defer out.Close()

	summaryJSON, _ := json.Marshal(summary)
	w.Header().Set("X-Mdoffice-Summary", string(summaryJSON))
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", outputName(header.Filename, format)))
	io.Copy(w, out)
}

// handleFormats reports per-format availability as configured at startup.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]bool, len(config.Formats))
	for _, f := range config.Formats {
		out[string(f)] = s.cfg.Available(f)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func saveUpload(src io.Reader, dst string, maxBytes int64) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(src, maxBytes+1))
	if err != nil {
		return err
	}
	if n > maxBytes {
		return fmt.Errorf("exceeds max size (%d bytes)", maxBytes)
	}
	return nil
}

// outputName derives the download filename from the uploaded source name.
func outputName(sourceName string, format config.Format) string {
	base := sanitizeFilename(sourceName)
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".md"), ".markdown")
	return base + "." + string(format)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
