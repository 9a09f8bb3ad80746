// Package convert orchestrates one conversion run: section extraction, mode
// dispatch, reconstruction through the format packages, and the single final
// artifact write.
package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/mdoffice/internal/config"
	"github.com/dgallion1/mdoffice/internal/deck"
	"github.com/dgallion1/mdoffice/internal/docdoc"
	"github.com/dgallion1/mdoffice/internal/merge"
	"github.com/dgallion1/mdoffice/internal/pdfdoc"
	"github.com/dgallion1/mdoffice/internal/section"
	"github.com/dgallion1/mdoffice/internal/sheet"
)

// Options selects what one run produces.
type Options struct {
	Format       config.Format
	Mode         merge.Mode
	ExistingPath string // artifact to merge into, for append/replace
	OutputPath   string
}

// Run executes a conversion and returns its summary. Nothing is written on
// error; on success the artifact at OutputPath is replaced atomically.
func Run(cfg config.Config, source string, opts Options, log *slog.Logger) (*merge.Summary, error) {
	if !cfg.Available(opts.Format) {
		return nil, fmt.Errorf("format %s is disabled", opts.Format)
	}
	if opts.Mode != merge.ModeCreate && (opts.Format == config.FormatDOCX || opts.Format == config.FormatXLSX) {
		return nil, fmt.Errorf("%s mode is not supported for %s output", opts.Mode, opts.Format)
	}

	sections := section.Extract(source)
	log.Info("extracted sections", "count", len(sections), "mode", opts.Mode, "format", opts.Format)

	var summary *merge.Summary
	var err error
	switch opts.Format {
	case config.FormatPDF:
		summary, err = runPDF(cfg, source, sections, opts)
	case config.FormatPPTX:
		summary, err = runPPTX(cfg, source, sections, opts)
	case config.FormatDOCX:
		summary, err = runWholeDocument(sections, opts, docdoc.Create, source)
	case config.FormatXLSX:
		summary, err = runWholeDocument(sections, opts, sheet.Create, source)
	default:
		return nil, fmt.Errorf("unknown format %q", opts.Format)
	}
	if err != nil {
		return nil, err
	}

	for _, w := range summary.Warnings {
		log.Warn(w)
	}
	for _, rep := range summary.Replacements {
		log.Info("replaced unit",
			"index", rep.UnitIndex,
			"title", rep.OriginalTitle,
			"rendered_units", rep.RenderedUnits,
		)
	}
	return summary, nil
}

// wholeDocSections applies the create-mode fallback: a document without
// structure becomes one untitled section covering everything.
func wholeDocSections(sections []section.Section, source string) ([]section.Section, string) {
	if len(sections) > 0 {
		return sections, ""
	}
	return []section.Section{{Title: "Untitled", Content: source}},
		"no second-level headings found; creating a single untitled section"
}

func runPDF(cfg config.Config, source string, sections []section.Section, opts Options) (*merge.Summary, error) {
	renderer, err := pdfdoc.NewRenderer()
	if err != nil {
		return nil, err
	}
	defer renderer.Close()

	var res *merge.Result
	switch opts.Mode {
	case merge.ModeCreate:
		var warning string
		sections, warning = wholeDocSections(sections, source)
		res, err = merge.Create(sections, renderer)
		if err == nil && warning != "" {
			res.Summary.Warnings = append(res.Summary.Warnings, warning)
		}
	case merge.ModeAppend, merge.ModeReplace:
		var st *pdfdoc.Store
		st, err = pdfdoc.Open(opts.ExistingPath, cfg.PDFFallbackPdftotext)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		if opts.Mode == merge.ModeAppend {
			res, err = merge.Append(st, sections, renderer)
		} else {
			res, err = merge.Replace(st, sections, renderer)
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}
	if err != nil {
		return nil, err
	}

	if err := pdfdoc.WriteArtifact(res.Units, opts.OutputPath); err != nil {
		return nil, err
	}
	return &res.Summary, nil
}

func runPPTX(cfg config.Config, source string, sections []section.Section, opts Options) (*merge.Summary, error) {
	renderer := &deck.Renderer{MaxBodyLines: cfg.SlideMaxBodyLines}

	var res *merge.Result
	var err error
	switch opts.Mode {
	case merge.ModeCreate:
		var warning string
		sections, warning = wholeDocSections(sections, source)
		res, err = merge.Create(sections, renderer)
		if err == nil && warning != "" {
			res.Summary.Warnings = append(res.Summary.Warnings, warning)
		}
	case merge.ModeAppend, merge.ModeReplace:
		var st *deck.Store
		st, err = deck.Open(opts.ExistingPath)
		if err != nil {
			return nil, err
		}
		if opts.Mode == merge.ModeAppend {
			res, err = merge.Append(st, sections, renderer)
		} else {
			res, err = merge.Replace(st, sections, renderer)
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}
	if err != nil {
		return nil, err
	}

	if err := deck.WriteArtifact(res.Units, opts.OutputPath); err != nil {
		return nil, err
	}
	return &res.Summary, nil
}

// runWholeDocument covers the create-only formats (Word, Excel): the writer
// consumes the full source, sections only inform the summary.
func runWholeDocument(sections []section.Section, opts Options, write func(src, outPath string) error, source string) (*merge.Summary, error) {
	tmp := opts.OutputPath + ".tmp"
	if err := write(source, tmp); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("%w: %v", merge.ErrRenderFailure, err)
	}
	if err := os.Rename(tmp, opts.OutputPath); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("finalize artifact: %w", err)
	}
	return &merge.Summary{Mode: merge.ModeCreate, Sections: len(sections), AddedUnits: 1}, nil
}

// DefaultOutputPath derives the output filename from the source filename and
// format, e.g. report.md -> report.pdf.
func DefaultOutputPath(sourcePath string, format config.Format) string {
	base := sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))]
	return base + "." + string(format)
}
