package models

// FieldLocator holds independent ways to find the live element for a field.
// At least one member must be populated or the field is unreachable at fill time.
type FieldLocator struct {
	CSS        string `json:"css,omitempty"`
	XPath      string `json:"xpath,omitempty"`
	Aria       string `json:"aria,omitempty"`
	DataTestID string `json:"dataTestId,omitempty"`
	Nth        string `json:"nth,omitempty"`
}

// FormField represents one form control detected on a job application page.
type FormField struct {
	FieldID     string                 `json:"field_id"`
	Name        string                 `json:"name,omitempty"`
	Label       string                 `json:"label,omitempty"`
	Placeholder string                 `json:"placeholder,omitempty"`
	Type        string                 `json:"type"`
	Required    bool                   `json:"required"`
	Options     []string               `json:"options,omitempty"`
	Locators    FieldLocator           `json:"locators"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// Visible reports the extraction-time visibility flag from the meta bag.
func (f *FormField) Visible() bool {
	if f.Meta == nil {
		return false
	}
	v, _ := f.Meta["visible"].(bool)
	return v
}

// HasDnd reports whether a drag-and-drop upload affordance was suspected.
func (f *FormField) HasDnd() bool {
	if f.Meta == nil {
		return false
	}
	v, _ := f.Meta["hasDnd"].(bool)
	return v
}

// Answer returns the assigned answer string, if any. Answers are always
// strings, even for boolean-like fields ("true"/"false").
func (f *FormField) Answer() (string, bool) {
	if f.Meta == nil {
		return "", false
	}
	s, ok := f.Meta["answer"].(string)
	return s, ok
}

// SetAnswer stamps the answer value onto the field's meta bag.
func (f *FormField) SetAnswer(value string) {
	if f.Meta == nil {
		f.Meta = map[string]interface{}{}
	}
	f.Meta["answer"] = value
}

// FormSection is a named or unnamed grouping of fields. Extraction currently
// produces exactly one flat section; multi-step forms may produce more.
type FormSection struct {
	Title  string       `json:"title,omitempty"`
	Fields []*FormField `json:"fields"`
}

// Validity is a derived judgment of whether the page is an actual job
// application form. It is recomputed on every extraction, never cached.
type Validity struct {
	IsValidJobApplicationForm bool                   `json:"is_valid_job_application_form"`
	Confidence                float64                `json:"confidence"`
	Meta                      map[string]interface{} `json:"meta,omitempty"`
}

// FormSchema is the root extraction result for a single page visit.
type FormSchema struct {
	URL      string         `json:"url,omitempty"`
	ATS      string         `json:"ats,omitempty"`
	Sections []*FormSection `json:"sections"`
	Validity Validity       `json:"validity"`
}

// AllFields iterates every field across all sections in document order.
func (s *FormSchema) AllFields() []*FormField {
	var fields []*FormField
	for _, section := range s.Sections {
		fields = append(fields, section.Fields...)
	}
	return fields
}

// FieldByID looks a field up by its extraction-time id.
func (s *FormSchema) FieldByID(fieldID string) *FormField {
	for _, f := range s.AllFields() {
		if f.FieldID == fieldID {
			return f
		}
	}
	return nil
}
