package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"

	"applyai/models"
)

// FormExtractor scans a page and produces a structured field inventory plus
// a page-validity classification. A FormSchema is created fresh on every
// visit; validity is recomputed each time, never cached against a URL.
type FormExtractor struct{}

// NewFormExtractor creates a new form schema extractor
func NewFormExtractor() *FormExtractor {
	return &FormExtractor{}
}

// rawField is the per-element capture shared by the live and snapshot paths.
type rawField struct {
	Tag         string             `json:"tag"`
	Type        string             `json:"type"`
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Placeholder string             `json:"placeholder"`
	AriaLabel   string             `json:"ariaLabel"`
	Required    bool               `json:"required"`
	Role        string             `json:"role"`
	Label       string             `json:"label"`
	Visible     bool               `json:"visible"`
	BBox        map[string]float64 `json:"bbox"`
	Classes     string             `json:"classes"`
	HasDnd      bool               `json:"hasDnd"`
	Options     []string           `json:"options"`
}

const extractFieldsJS = `
() => {
  const nodes = Array.from(document.querySelectorAll('input, textarea, select, [role="combobox"], [contenteditable="true"]'));
  const results = [];
  for (const el of nodes) {
    const tag = el.tagName.toLowerCase();
    const type = (el.getAttribute('type') || '').toLowerCase();
    const id = el.id || '';
    const name = el.getAttribute('name') || '';
    const placeholder = el.getAttribute('placeholder') || '';
    const ariaLabel = el.getAttribute('aria-label') || '';
    const required = el.hasAttribute('required') || el.getAttribute('aria-required') === 'true';
    const role = el.getAttribute('role') || '';
    const labelFor = id ? document.querySelector('label[for="' + id + '"]') : null;
    let label = labelFor ? labelFor.innerText.trim() : '';
    if (!label && el.closest('label')) {
      label = el.closest('label').innerText.trim();
    }
    if (!label && ariaLabel) label = ariaLabel;
    const style = window.getComputedStyle(el);
    const bounding = el.getBoundingClientRect();
    const visible = (
      style && style.visibility !== 'hidden' && style.display !== 'none' &&
      bounding.width > 0 && bounding.height > 0
    );
    let options = [];
    if (tag === 'select') {
      options = Array.from(el.options || []).map(o => (o.textContent || '').trim()).filter(Boolean);
    }
    results.push({
      tag,
      type,
      id,
      name,
      placeholder,
      ariaLabel,
      required,
      role,
      label,
      visible,
      bbox: {x: bounding.x, y: bounding.y, w: bounding.width, h: bounding.height},
      classes: el.className || '',
      hasDnd: false,
      options
    });
  }
  return results;
}`

const uploadSignalJS = `
() => {
  const fileInputs = document.querySelectorAll('input[type="file"]');
  if (fileInputs && fileInputs.length > 0) return true;
  const nodes = Array.from(document.querySelectorAll('button, [role="button"], label, a, div, p, span, h1, h2, h3'));
  const texts = nodes.map(e => (e.innerText || '').toLowerCase()).filter(Boolean);
  const hasUploadish = texts.some(t => /(upload|attach|choose file|select file)/.test(t));
  const hasResumeish = texts.some(t => /(resume|cv)/.test(t));
  if (hasUploadish && hasResumeish) return true;
  const autofill = texts.some(t => /autofill/.test(t));
  return hasUploadish && autofill;
}`

const submitSignalJS = `
() => {
  const texts = Array.from(document.querySelectorAll('button, [role="button"], a, div'))
    .map(e => (e.innerText || '').toLowerCase()).filter(Boolean);
  return texts.some(t => /submit\s+application/.test(t));
}`

// ExtractFromPage builds a FormSchema from the live page.
func (fe *FormExtractor) ExtractFromPage(page playwright.Page, pageURL string) (*models.FormSchema, error) {
	raw, err := fe.evaluateFields(page)
	if err != nil {
		return nil, fmt.Errorf("field enumeration failed: %w", err)
	}

	fields := buildFormFields(raw, 0)

	uploadSignal := fe.evaluateBool(page, uploadSignalJS)
	submitSignal := fe.evaluateBool(page, submitSignalJS)

	fields = appendSyntheticUploadField(fields, uploadSignal)

	schema := &models.FormSchema{
		URL:      pageURL,
		ATS:      DetectATS(pageURL),
		Sections: []*models.FormSection{{Fields: fields}},
		Validity: computeValidity(fields, uploadSignal, submitSignal),
	}
	log.Printf("Extracted %d fields from %s (valid=%v, confidence=%.2f)",
		len(fields), pageURL, schema.Validity.IsValidJobApplicationForm, schema.Validity.Confidence)
	return schema, nil
}

func (fe *FormExtractor) evaluateFields(page playwright.Page) ([]rawField, error) {
	result, err := page.Evaluate(extractFieldsJS)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var raw []rawField
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// evaluateBool runs a boolean page script, treating any failure as false.
func (fe *FormExtractor) evaluateBool(page playwright.Page, script string) bool {
	result, err := page.Evaluate(script)
	if err != nil {
		return false
	}
	v, _ := result.(bool)
	return v
}

// guessFieldType maps DOM facts onto the schema's field-type vocabulary.
func guessFieldType(inputType, tag, role string) string {
	switch tag {
	case "textarea":
		return "textarea"
	case "select":
		return "select"
	case "input":
		t := strings.ToLower(inputType)
		if t == "" {
			t = "text"
		}
		switch t {
		case "text", "email", "tel", "number", "date", "file", "checkbox", "radio", "password":
			return t
		}
		return "text"
	}
	if role == "combobox" {
		return "combobox"
	}
	return "custom"
}

// buildFormFields converts raw captures into FormFields. Ids are assigned in
// document order; idxOffset continues the sequence when aggregating fields
// from multiple frame documents into one schema, keeping field_id unique.
// Hidden inputs are dropped except file inputs: many ATS widgets hide the
// native file input behind a styled button.
func buildFormFields(raw []rawField, idxOffset int) []*models.FormField {
	var fields []*models.FormField
	for i, e := range raw {
		if e.Tag == "input" && strings.ToLower(e.Type) == "hidden" {
			continue
		}
		isFile := e.Tag == "input" && strings.ToLower(e.Type) == "file"
		if !e.Visible && !isFile {
			continue
		}

		idx := idxOffset + i
		loc := models.FieldLocator{}
		switch {
		case e.ID != "":
			loc.CSS = "#" + e.ID
		case e.Name != "":
			loc.CSS = fmt.Sprintf("[name=%q]", e.Name)
		default:
			loc.Nth = fmt.Sprintf("%s[%d]", e.Tag, idx)
		}

		fields = append(fields, &models.FormField{
			FieldID:     fmt.Sprintf("field_%d", idx),
			Name:        e.Name,
			Label:       e.Label,
			Placeholder: e.Placeholder,
			Type:        guessFieldType(e.Type, e.Tag, e.Role),
			Required:    e.Required,
			Options:     e.Options,
			Locators:    loc,
			Meta: map[string]interface{}{
				"ariaLabel": e.AriaLabel,
				"bbox":      e.BBox,
				"classes":   e.Classes,
				"hasDnd":    e.HasDnd,
				"visible":   e.Visible,
			},
		})
	}
	return fields
}

// appendSyntheticUploadField adds a synthetic file field when textual upload
// signals are present but no native file input was found (drag-and-drop
// zones frequently have no input element at all).
func appendSyntheticUploadField(fields []*models.FormField, uploadSignal bool) []*models.FormField {
	for _, f := range fields {
		if f.Type == "file" {
			return fields
		}
	}
	if !uploadSignal {
		return fields
	}
	return append(fields, &models.FormField{
		FieldID: "upload_0",
		Label:   "Resume Upload",
		Type:    "file",
		Meta: map[string]interface{}{
			"synthetic": true,
			"visible":   true,
		},
	})
}

var (
	emailFieldRe = regexp.MustCompile(`\bemail\b`)
	phoneFieldRe = regexp.MustCompile(`\bphone|tel\b`)
)

// computeValidity derives the "is this actually an application form" verdict
// from the extracted fields plus the page-level text signals. Deliberately
// heuristic: cheap separation of apply forms from marketing pages without an
// LLM call.
func computeValidity(fields []*models.FormField, uploadSignal, submitSignal bool) models.Validity {
	var visible []*models.FormField
	for _, f := range fields {
		if f.Visible() {
			visible = append(visible, f)
		}
	}

	fileLikeVisible := 0
	for _, f := range visible {
		if f.Type == "file" || f.HasDnd() {
			fileLikeVisible++
		}
	}

	anyFile := false
	for _, f := range fields {
		if f.Type == "file" {
			anyFile = true
			break
		}
	}
	fileLikeAny := fileLikeVisible > 0 || anyFile || uploadSignal

	commonPersonal := 0
	for _, f := range visible {
		hay := strings.ToLower(strings.Join([]string{f.Name, f.Label, f.Placeholder}, " "))
		if emailFieldRe.MatchString(hay) ||
			phoneFieldRe.MatchString(hay) ||
			(strings.Contains(hay, "first") && strings.Contains(hay, "name")) ||
			(strings.Contains(hay, "last") && strings.Contains(hay, "name")) {
			commonPersonal++
		}
	}

	isValid := fileLikeAny && (commonPersonal >= 1 || submitSignal) && len(visible) >= 3

	conf := 0.2
	if isValid {
		fileLikeIndicator := 0.0
		if fileLikeAny {
			fileLikeIndicator = 1.0
		}
		conf = 0.4 + 0.2*fileLikeIndicator + 0.1*float64(commonPersonal) + 0.02*float64(len(visible))
		conf = math.Min(1.0, conf)
	}
	conf = math.Round(conf*100) / 100

	return models.Validity{
		IsValidJobApplicationForm: isValid,
		Confidence:                conf,
		Meta: map[string]interface{}{
			"visible_fields":    len(visible),
			"file_like_visible": fileLikeVisible,
			"common_personal":   commonPersonal,
			"upload_signal":     uploadSignal,
			"submit_signal":     submitSignal,
		},
	}
}

// DetectATS labels the schema with a known applicant-tracking vendor when the
// URL gives it away.
func DetectATS(pageURL string) string {
	u := strings.ToLower(pageURL)
	switch {
	case strings.Contains(u, "greenhouse.io") || strings.Contains(u, "gh_jid"):
		return "greenhouse"
	case strings.Contains(u, "lever.co"):
		return "lever"
	case strings.Contains(u, "ashbyhq.com"):
		return "ashby"
	case strings.Contains(u, "workable.com"):
		return "workable"
	case strings.Contains(u, "myworkdayjobs.com") || strings.Contains(u, "workday"):
		return "workday"
	case strings.Contains(u, "bamboohr"):
		return "bamboohr"
	}
	return ""
}
