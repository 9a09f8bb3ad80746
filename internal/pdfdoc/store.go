package pdfdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dgallion1/mdoffice/internal/merge"
	"github.com/dgallion1/mdoffice/internal/section"
)

// Page is the PDF unit: a single-page PDF file inside the run's work
// directory, referenced by path.
type Page string

var conf = model.NewDefaultConfiguration()

// Store exposes an existing PDF as one single-page file per page. All page
// files live in a run-scoped work directory removed by Close.
type Store struct {
	workDir string
	pages   []Page
	titles  []merge.TitledUnit
}

// Open validates the artifact, splits it into page files, and recovers page
// titles. Failures wrap merge.ErrUnreadableArtifact.
func Open(path string, pdftotextFallback bool) (*Store, error) {
	titles, err := Titles(path, pdftotextFallback)
	if err != nil {
		return nil, err
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", merge.ErrUnreadableArtifact, path, err)
	}

	workDir, err := os.MkdirTemp("", "mdoffice-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	st := &Store{workDir: workDir, titles: titles}
	for i := 1; i <= count; i++ {
		pageFile := filepath.Join(workDir, fmt.Sprintf("orig-%04d.pdf", i))
		if err := api.TrimFile(path, pageFile, []string{strconv.Itoa(i)}, conf); err != nil {
			st.Close()
			return nil, fmt.Errorf("%w: extract page %d: %v", merge.ErrUnreadableArtifact, i, err)
		}
		st.pages = append(st.pages, Page(pageFile))
	}
	return st, nil
}

func (s *Store) Len() int { return len(s.pages) }

func (s *Store) Unit(i int) merge.Unit { return s.pages[i] }

func (s *Store) Titles() []merge.TitledUnit { return s.titles }

// Close removes the store's page files.
func (s *Store) Close() error {
	if s.workDir == "" {
		return nil
	}
	return os.RemoveAll(s.workDir)
}

// Renderer renders sections into single-page PDF units. Each rendered
// section becomes its own document, split per page so a long section fans
// out into multiple units.
type Renderer struct {
	workDir string
	seq     int
}

// NewRenderer creates a renderer with its own work directory; callers must
// Close it after the final artifact is written.
func NewRenderer() (*Renderer, error) {
	workDir, err := os.MkdirTemp("", "mdoffice-render-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Renderer{workDir: workDir}, nil
}

func (r *Renderer) Render(sec section.Section) ([]merge.Unit, error) {
	r.seq++
	secFile := filepath.Join(r.workDir, fmt.Sprintf("sec-%04d.pdf", r.seq))
	if err := renderSectionPDF(sec, secFile); err != nil {
		return nil, err
	}

	count, err := api.PageCountFile(secFile)
	if err != nil {
		return nil, fmt.Errorf("page count of rendered section: %w", err)
	}

	units := make([]merge.Unit, 0, count)
	for p := 1; p <= count; p++ {
		pageFile := filepath.Join(r.workDir, fmt.Sprintf("sec-%04d-p%03d.pdf", r.seq, p))
		if err := api.TrimFile(secFile, pageFile, []string{strconv.Itoa(p)}, conf); err != nil {
			return nil, fmt.Errorf("split rendered section: %w", err)
		}
		units = append(units, Page(pageFile))
	}
	return units, nil
}

func (r *Renderer) Close() error {
	return os.RemoveAll(r.workDir)
}

// WriteArtifact merges the ordered unit sequence into outPath. The merge is
// staged to a temp file in the destination directory and renamed into place,
// so a failed run never leaves a partial artifact behind.
func WriteArtifact(units []merge.Unit, outPath string) error {
	if len(units) == 0 {
		return errors.New("no pages to write")
	}

	inFiles := make([]string, len(units))
	for i, u := range units {
		page, ok := u.(Page)
		if !ok {
			return fmt.Errorf("unexpected unit type %T", u)
		}
		inFiles[i] = string(page)
	}

	tmp := outPath + ".tmp"
	if err := api.MergeCreateFile(inFiles, tmp, false, conf); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("merge pages: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize artifact: %w", err)
	}
	return nil
}
