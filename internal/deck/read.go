// Package deck reads and writes slide-oriented PPTX artifacts. There is no
// usable PPTX library in the Go ecosystem, so this package speaks just enough
// OOXML directly: slide order comes from the presentation part's sldIdLst,
// slide titles from the title placeholder shape, and untouched slides are
// carried over byte-for-byte.
package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/dgallion1/mdoffice/internal/merge"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
	contentTypesPart = "[Content_Types].xml"

	slideRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
)

var (
	sldIdLstRe    = regexp.MustCompile(`(?s)<p:sldIdLst>(.*?)</p:sldIdLst>`)
	relIDRe       = regexp.MustCompile(`r:id="([^"]+)"`)
	shapeRe       = regexp.MustCompile(`(?s)<p:sp>.*?</p:sp>`)
	titlePhRe     = regexp.MustCompile(`<p:ph[^>]*type="(?:title|ctrTitle)"`)
	runTextRe     = regexp.MustCompile(`(?s)<a:t>(.*?)</a:t>`)
	slideLayoutRe = regexp.MustCompile(`Target="(\.\./slideLayouts/[^"]+)"`)
)

// Package is a PPTX file held fully in memory: every zip entry plus the
// resolved slide order.
type Package struct {
	entries map[string][]byte
	order   []string // slide part names, e.g. "ppt/slides/slide1.xml", in show order
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	Rels []relationship `xml:"Relationship"`
}

// presentationRelationships parses the presentation part's rels.
func (p *Package) presentationRelationships() ([]relationship, error) {
	data, ok := p.entries[presentationRels]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", merge.ErrUnreadableArtifact, presentationRels)
	}
	var rels relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("%w: presentation rels: %v", merge.ErrUnreadableArtifact, err)
	}
	return rels.Rels, nil
}

// OpenPackage reads a .pptx into memory and resolves its slide order.
func OpenPackage(pptxPath string) (*Package, error) {
	zr, err := zip.OpenReader(pptxPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", merge.ErrUnreadableArtifact, pptxPath, err)
	}
	defer zr.Close()

	pkg := &Package{entries: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", merge.ErrUnreadableArtifact, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", merge.ErrUnreadableArtifact, f.Name, err)
		}
		pkg.entries[f.Name] = data
	}

	if err := pkg.resolveOrder(); err != nil {
		return nil, err
	}
	return pkg, nil
}

// resolveOrder maps the sldIdLst relationship ids through the presentation
// rels to slide part names.
func (p *Package) resolveOrder() error {
	pres, ok := p.entries[presentationPart]
	if !ok {
		return fmt.Errorf("%w: missing %s", merge.ErrUnreadableArtifact, presentationPart)
	}
	rels, err := p.presentationRelationships()
	if err != nil {
		return err
	}
	targets := make(map[string]string, len(rels))
	for _, r := range rels {
		targets[r.ID] = r.Target
	}

	lst := sldIdLstRe.FindSubmatch(pres)
	if lst == nil {
		return fmt.Errorf("%w: presentation has no slide list", merge.ErrUnreadableArtifact)
	}
	for _, m := range relIDRe.FindAllSubmatch(lst[1], -1) {
		target, ok := targets[string(m[1])]
		if !ok {
			return fmt.Errorf("%w: dangling slide relationship %s", merge.ErrUnreadableArtifact, m[1])
		}
		p.order = append(p.order, path.Join("ppt", target))
	}
	return nil
}

// SlideCount is the number of slides in show order.
func (p *Package) SlideCount() int { return len(p.order) }

// slideXML returns the raw XML of the i-th slide.
func (p *Package) slideXML(i int) []byte {
	return p.entries[p.order[i]]
}

// slideTitle recovers the display title of one slide's XML. The title
// placeholder text is used verbatim when present; otherwise the first
// non-empty text line of the whole slide.
func slideTitle(slide []byte) string {
	for _, sp := range shapeRe.FindAll(slide, -1) {
		if !titlePhRe.Match(sp) {
			continue
		}
		if t := shapeText(sp); t != "" {
			return t
		}
	}
	// No structural title: fall back to the first non-empty run of text.
	for _, m := range runTextRe.FindAllSubmatch(slide, -1) {
		if t := strings.TrimSpace(unescapeXML(string(m[1]))); t != "" {
			return t
		}
	}
	return ""
}

// shapeText concatenates a shape's text runs.
func shapeText(sp []byte) string {
	var b strings.Builder
	for _, m := range runTextRe.FindAllSubmatch(sp, -1) {
		b.WriteString(unescapeXML(string(m[1])))
	}
	return strings.TrimSpace(b.String())
}

// layoutTarget finds the slide layout referenced by the i-th slide's rels,
// for reuse by freshly generated slides. Empty if the slide has no rels.
func (p *Package) layoutTarget(i int) string {
	rels, ok := p.entries[slideRelsName(p.order[i])]
	if !ok {
		return ""
	}
	if m := slideLayoutRe.FindSubmatch(rels); m != nil {
		return string(m[1])
	}
	return ""
}

// slideRelsName maps "ppt/slides/slide1.xml" to its rels part name.
func slideRelsName(slidePart string) string {
	return path.Join(path.Dir(slidePart), "_rels", path.Base(slidePart)+".rels")
}

// readPackageFromBytes is the in-memory variant of OpenPackage.
func readPackageFromBytes(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", merge.ErrUnreadableArtifact, err)
	}
	pkg := &Package{entries: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", merge.ErrUnreadableArtifact, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", merge.ErrUnreadableArtifact, f.Name, err)
		}
		pkg.entries[f.Name] = data
	}
	if err := pkg.resolveOrder(); err != nil {
		return nil, err
	}
	return pkg, nil
}

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&#39;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string { return xmlUnescaper.Replace(s) }

func escapeXML(s string) string {
	var b bytes.Buffer
	// xml.EscapeText only fails on a failing writer; bytes.Buffer never does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
