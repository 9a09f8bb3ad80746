package deck

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/mdoffice/internal/merge"
)

var (
	slideNumRe = regexp.MustCompile(`slide(\d+)\.xml$`)
	rIDNumRe   = regexp.MustCompile(`^rId(\d+)$`)
)

// WriteArtifact assembles the ordered slide sequence into a .pptx at
// outPath. Output is staged to a temp file and renamed into place so an
// existing artifact survives a failed write.
func WriteArtifact(units []merge.Unit, outPath string) error {
	if len(units) == 0 {
		return errors.New("no slides to write")
	}

	slides := make([]Slide, len(units))
	var src *Package
	for i, u := range units {
		s, ok := u.(Slide)
		if !ok {
			return fmt.Errorf("unexpected unit type %T", u)
		}
		if s.passthrough() {
			if src == nil {
				src = s.src
			} else if src != s.src {
				return errors.New("passthrough slides from different source decks")
			}
		}
		slides[i] = s
	}

	var data []byte
	var err error
	if src == nil {
		data, err = buildFresh(slides)
	} else {
		data, err = rebuild(src, slides)
	}
	if err != nil {
		return err
	}

	tmp := outPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("stage artifact: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize artifact: %w", err)
	}
	return nil
}

// buildFresh generates a complete minimal package for a deck with no
// passthrough slides.
func buildFresh(slides []Slide) ([]byte, error) {
	entries := map[string][]byte{
		"_rels/.rels":                                  []byte(tmplRootRels),
		"ppt/slideMasters/slideMaster1.xml":            []byte(tmplSlideMaster),
		"ppt/slideMasters/_rels/slideMaster1.xml.rels": []byte(tmplSlideMasterRels),
		"ppt/slideLayouts/slideLayout1.xml":            []byte(tmplSlideLayout),
		"ppt/slideLayouts/_rels/slideLayout1.xml.rels": []byte(tmplSlideLayoutRels),
		"ppt/theme/theme1.xml":                         []byte(tmplTheme),
	}

	var sldIDs, rels, overrides strings.Builder
	for i, s := range slides {
		n := i + 1
		part := fmt.Sprintf("ppt/slides/slide%d.xml", n)
		rid := fmt.Sprintf("rId%d", n+1) // rId1 is the slide master

		entries[part] = []byte(slideXML(s))
		entries[slideRelsName(part)] = []byte(fmt.Sprintf(tmplSlideRels, "../slideLayouts/slideLayout1.xml"))

		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="%s"/>`, 256+i, rid)
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s" Target="slides/slide%d.xml"/>`, rid, slideRelType, n)
		fmt.Fprintf(&overrides, `<Override PartName="/%s" ContentType="%s"/>`, part, slideContentType)
	}

	entries[presentationPart] = []byte(fmt.Sprintf(tmplPresentation, sldIDs.String()))
	entries[presentationRels] = []byte(fmt.Sprintf(tmplPresentationRels, rels.String()))
	entries[contentTypesPart] = []byte(fmt.Sprintf(tmplContentTypes, overrides.String()))

	return zipEntries(entries)
}

// rebuild produces a package based on src: passthrough slides keep their
// parts byte-for-byte, rendered slides are added as new parts, and the
// presentation list, relationships, and content types are rewritten to the
// new order. Parts of dropped slides are removed.
func rebuild(src *Package, slides []Slide) ([]byte, error) {
	kept := make(map[string]bool)
	for _, s := range slides {
		if s.passthrough() {
			kept[s.part] = true
		}
	}
	removed := make(map[string]bool)
	for _, part := range src.order {
		if !kept[part] {
			removed[part] = true
		}
	}

	// Existing slide relationship ids, by target part.
	rels, err := src.presentationRelationships()
	if err != nil {
		return nil, err
	}
	ridByPart := make(map[string]string)
	maxRID := 0
	for _, r := range rels {
		if m := rIDNumRe.FindStringSubmatch(r.ID); m != nil {
			if n, _ := strconv.Atoi(m[1]); n > maxRID {
				maxRID = n
			}
		}
		if r.Type == slideRelType {
			ridByPart["ppt/"+r.Target] = r.ID
		}
	}

	maxSlide := 0
	for part := range src.entries {
		if m := slideNumRe.FindStringSubmatch(part); m != nil && strings.HasPrefix(part, "ppt/slides/") {
			if n, _ := strconv.Atoi(m[1]); n > maxSlide {
				maxSlide = n
			}
		}
	}

	layout := "../slideLayouts/slideLayout1.xml"
	for i, part := range src.order {
		if kept[part] {
			if t := src.layoutTarget(i); t != "" {
				layout = t
			}
			break
		}
	}

	entries := make(map[string][]byte, len(src.entries))
	for name, data := range src.entries {
		if removed[name] {
			continue
		}
		if strings.HasPrefix(name, "ppt/slides/_rels/") {
			slidePart := "ppt/slides/" + strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/_rels/"), ".rels")
			if removed[slidePart] {
				continue
			}
		}
		entries[name] = data
	}

	// Generate new slide parts and collect the final slide id list.
	var sldIDs strings.Builder
	var newRels, newOverrides strings.Builder
	nextSlide := maxSlide
	nextRID := maxRID
	for i, s := range slides {
		var rid string
		if s.passthrough() {
			rid = ridByPart[s.part]
			if rid == "" {
				return nil, fmt.Errorf("no relationship for slide part %s", s.part)
			}
		} else {
			nextSlide++
			nextRID++
			part := fmt.Sprintf("ppt/slides/slide%d.xml", nextSlide)
			rid = fmt.Sprintf("rId%d", nextRID)
			entries[part] = []byte(slideXML(s))
			entries[slideRelsName(part)] = []byte(fmt.Sprintf(tmplSlideRels, layout))
			fmt.Fprintf(&newRels, `<Relationship Id="%s" Type="%s" Target="slides/slide%d.xml"/>`, rid, slideRelType, nextSlide)
			fmt.Fprintf(&newOverrides, `<Override PartName="/%s" ContentType="%s"/>`, part, slideContentType)
		}
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="%s"/>`, 256+i, rid)
	}

	// Rewrite the presentation part's slide list in place.
	pres := sldIdLstRe.ReplaceAll(src.entries[presentationPart],
		[]byte("<p:sldIdLst>"+sldIDs.String()+"</p:sldIdLst>"))
	entries[presentationPart] = pres

	// Rewrite the presentation rels: drop removed slides, append new ones.
	var relsOut strings.Builder
	relsOut.WriteString(xmlHeader)
	relsOut.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		if r.Type == slideRelType && removed["ppt/"+r.Target] {
			continue
		}
		fmt.Fprintf(&relsOut, `<Relationship Id="%s" Type="%s" Target="%s"`, r.ID, r.Type, r.Target)
		if r.TargetMode != "" {
			fmt.Fprintf(&relsOut, ` TargetMode="%s"`, r.TargetMode)
		}
		relsOut.WriteString("/>")
	}
	relsOut.WriteString(newRels.String())
	relsOut.WriteString(`</Relationships>`)
	entries[presentationRels] = []byte(relsOut.String())

	// Rewrite content types: drop removed overrides, add new ones.
	ct := string(src.entries[contentTypesPart])
	for part := range removed {
		override := fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, part, slideContentType)
		ct = strings.Replace(ct, override, "", 1)
	}
	ct = strings.Replace(ct, "</Types>", newOverrides.String()+"</Types>", 1)
	entries[contentTypesPart] = []byte(ct)

	return zipEntries(entries)
}

// slideXML renders a Slide's title and body into the slide part template.
func slideXML(s Slide) string {
	return fmt.Sprintf(tmplSlide, escapeXML(s.Title), bodyXML(s.Body))
}

func bodyXML(body string) string {
	if strings.TrimSpace(body) == "" {
		return "<a:p/>"
	}
	var b strings.Builder
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString("<a:p/>")
			continue
		}
		fmt.Fprintf(&b, `<a:p><a:r><a:rPr lang="en-US" sz="1800"/><a:t>%s</a:t></a:r></a:p>`, escapeXML(line))
	}
	return b.String()
}

// zipEntries writes the entry map as a zip, [Content_Types].xml first.
func zipEntries(entries map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == contentTypesPart {
			return true
		}
		if names[j] == contentTypesPart {
			return false
		}
		return names[i] < names[j]
	})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}
