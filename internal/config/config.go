package config

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Format identifies an output artifact format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
	FormatPPTX Format = "pptx"
)

// Formats lists every supported output format.
var Formats = []Format{FormatPDF, FormatDOCX, FormatXLSX, FormatPPTX}

type Config struct {
	// Default output format when none is requested.
	DefaultFormat Format

	// Per-format availability, resolved once at load time and consulted
	// once before dispatch, never per call.
	Enabled map[Format]bool

	// PDF title extraction falls back to the pdftotext binary when the Go
	// extractor fails. Resolved against PATH at load time.
	PDFFallbackPdftotext bool

	// Slide body line budget before a section overflows to the next slide.
	SlideMaxBodyLines int

	// HTTP server.
	Port           string
	APIKey         string
	MaxUploadBytes int64
}

func Load() Config {
	cfg := Config{
		DefaultFormat: Format(envOr("MDOFFICE_DEFAULT_FORMAT", string(FormatPDF))),
		Enabled: map[Format]bool{
			FormatPDF:  envBool("MDOFFICE_ENABLE_PDF", true),
			FormatDOCX: envBool("MDOFFICE_ENABLE_DOCX", true),
			FormatXLSX: envBool("MDOFFICE_ENABLE_XLSX", true),
			FormatPPTX: envBool("MDOFFICE_ENABLE_PPTX", true),
		},
		PDFFallbackPdftotext: envBool("MDOFFICE_PDF_FALLBACK_PDFTOTEXT", true),

		SlideMaxBodyLines: envInt("MDOFFICE_SLIDE_MAX_BODY_LINES", 12),

		Port:           envOr("PORT", "8091"),
		APIKey:         os.Getenv("MDOFFICE_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
	}

	if cfg.SlideMaxBodyLines <= 0 {
		cfg.SlideMaxBodyLines = 12
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	// The fallback needs the binary on PATH; probe once here rather than
	// per conversion.
	if cfg.PDFFallbackPdftotext {
		if _, err := exec.LookPath("pdftotext"); err != nil {
			cfg.PDFFallbackPdftotext = false
		}
	}

	return cfg
}

// Available reports whether a format can be dispatched to.
func (c Config) Available(f Format) bool {
	return c.Enabled[f]
}

func (c Config) Validate() error {
	switch c.DefaultFormat {
	case FormatPDF, FormatDOCX, FormatXLSX, FormatPPTX:
	default:
		return fmt.Errorf("unknown default format %q", c.DefaultFormat)
	}
	return nil
}

// ValidateServer checks the settings the HTTP server additionally needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("MDOFFICE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
