package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"applyai/models"
)

// SnapshotExtractor rebuilds a FormSchema from a captured snapshot directory
// without a browser. It applies the same field-building and validity rules as
// the live extractor; only element capture differs.
//
// Visibility is a static approximation here: inline display/visibility/hidden
// markers are honored, computed styles are not available.
type SnapshotExtractor struct{}

func NewSnapshotExtractor() *SnapshotExtractor {
	return &SnapshotExtractor{}
}

var (
	uploadTextRe   = regexp.MustCompile(`(?i)(upload|attach|choose file|select file)`)
	resumeTextRe   = regexp.MustCompile(`(?i)(resume|cv)`)
	autofillTextRe = regexp.MustCompile(`(?i)autofill`)
	submitTextRe   = regexp.MustCompile(`(?i)submit\s+application`)
)

// ExtractFromSnapshot loads manifest.json from dir and extracts a schema from
// the main document plus every captured frame. Frame fields continue the main
// document's field_id sequence.
func (se *SnapshotExtractor) ExtractFromSnapshot(dir string) (*models.FormSchema, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	mainDoc, err := se.loadDocument(dir, manifest.PageDOM, manifest.PageHTML)
	if err != nil {
		return nil, err
	}

	docs := []*goquery.Document{mainDoc}
	for _, frame := range manifest.Frames {
		doc, err := se.loadDocument(dir, frame.DOMPath, frame.Path)
		if err != nil {
			log.Printf("snapshot extract: skipping frame %s: %v", frame.Path, err)
			continue
		}
		docs = append(docs, doc)
	}

	var fields []*models.FormField
	uploadSignal := false
	submitSignal := false
	offset := 0
	for _, doc := range docs {
		raw := collectSnapshotFields(doc)
		fields = append(fields, buildFormFields(raw, offset)...)
		offset += len(raw)

		up, sub := snapshotTextSignals(doc)
		uploadSignal = uploadSignal || up
		submitSignal = submitSignal || sub
	}

	fields = appendSyntheticUploadField(fields, uploadSignal)

	schema := &models.FormSchema{
		URL:      manifest.URL,
		ATS:      DetectATS(manifest.URL),
		Sections: []*models.FormSection{{Fields: fields}},
		Validity: computeValidity(fields, uploadSignal, submitSignal),
	}
	log.Printf("Extracted %d fields from snapshot %s (valid=%v, confidence=%.2f)",
		len(fields), dir, schema.Validity.IsValidJobApplicationForm, schema.Validity.Confidence)
	return schema, nil
}

// loadDocument opens the rendered DOM file, falling back to the raw HTML
// capture when no DOM serialization was saved.
func (se *SnapshotExtractor) loadDocument(dir, domPath, htmlPath string) (*goquery.Document, error) {
	name := domPath
	if name == "" {
		name = htmlPath
	}
	if name == "" {
		return nil, fmt.Errorf("snapshot entry has no document file")
	}
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return goquery.NewDocumentFromReader(f)
}

func collectSnapshotFields(doc *goquery.Document) []rawField {
	var raw []rawField
	doc.Find(`input, textarea, select, [role="combobox"], [contenteditable="true"]`).Each(func(_ int, sel *goquery.Selection) {
		node := sel.Get(0)
		if node == nil {
			return
		}
		tag := strings.ToLower(node.Data)
		id := sel.AttrOr("id", "")

		label := ""
		if id != "" {
			label = strings.TrimSpace(doc.Find(fmt.Sprintf(`label[for=%q]`, id)).First().Text())
		}
		if label == "" {
			label = strings.TrimSpace(sel.Closest("label").Text())
		}
		ariaLabel := sel.AttrOr("aria-label", "")
		if label == "" {
			label = ariaLabel
		}

		var options []string
		if tag == "select" {
			sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
				if text := strings.TrimSpace(opt.Text()); text != "" {
					options = append(options, text)
				}
			})
		}

		raw = append(raw, rawField{
			Tag:         tag,
			Type:        strings.ToLower(sel.AttrOr("type", "")),
			ID:          id,
			Name:        sel.AttrOr("name", ""),
			Placeholder: sel.AttrOr("placeholder", ""),
			AriaLabel:   ariaLabel,
			Required:    hasSnapshotRequired(sel),
			Role:        sel.AttrOr("role", ""),
			Label:       label,
			Visible:     staticallyVisible(sel),
			Classes:     sel.AttrOr("class", ""),
			Options:     options,
		})
	})
	return raw
}

func hasSnapshotRequired(sel *goquery.Selection) bool {
	if _, ok := sel.Attr("required"); ok {
		return true
	}
	return sel.AttrOr("aria-required", "") == "true"
}

// staticallyVisible approximates the live visibility check from markup
// alone. An element is hidden when it, or any ancestor, carries an inline
// display:none / visibility:hidden style or the hidden attribute.
func staticallyVisible(sel *goquery.Selection) bool {
	for s := sel; s.Length() > 0; s = s.Parent() {
		node := s.Get(0)
		if node == nil || node.Data == "html" {
			break
		}
		if _, hidden := s.Attr("hidden"); hidden {
			return false
		}
		style := strings.ToLower(strings.ReplaceAll(s.AttrOr("style", ""), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// snapshotTextSignals reports the upload and submit signals from document
// text, mirroring the live page scripts.
func snapshotTextSignals(doc *goquery.Document) (uploadSignal, submitSignal bool) {
	if doc.Find(`input[type="file"]`).Length() > 0 {
		uploadSignal = true
	}

	hasUploadish := false
	hasResumeish := false
	hasAutofill := false
	doc.Find(`button, [role="button"], label, a, div, p, span, h1, h2, h3`).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		if uploadTextRe.MatchString(text) {
			hasUploadish = true
		}
		if resumeTextRe.MatchString(text) {
			hasResumeish = true
		}
		if autofillTextRe.MatchString(text) {
			hasAutofill = true
		}
		if submitTextRe.MatchString(text) {
			submitSignal = true
		}
	})

	if hasUploadish && (hasResumeish || hasAutofill) {
		uploadSignal = true
	}
	return uploadSignal, submitSignal
}
