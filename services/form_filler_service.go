package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/playwright-community/playwright-go"

	"applyai/models"
)

// waitAfterUploadMs gives ATS resume-parsing widgets time to autofill other
// fields from the uploaded file before we start typing over them.
const waitAfterUploadMs = 4000

// FillReport summarizes one fill pass over a form.
type FillReport struct {
	ResumeUploaded bool     `json:"resume_uploaded"`
	Filled         []string `json:"filled"`
	Skipped        []string `json:"skipped"`
	Failed         []string `json:"failed"`
}

// FormFillerService executes answers against a live page. It fills but never
// submits: no strategy in this file clicks a submit control.
type FormFillerService struct{}

func NewFormFillerService() *FormFillerService {
	return &FormFillerService{}
}

// FillForm uploads the resume first, waits for autofill to settle, then fills
// every answered field. Individual field failures are recorded and skipped;
// the pass always completes.
func (s *FormFillerService) FillForm(page playwright.Page, schema *models.FormSchema, resumePath string) *FillReport {
	report := &FillReport{}

	if resumePath != "" {
		if err := s.uploadResume(page, resumePath); err != nil {
			log.Printf("Resume upload failed: %v", err)
		} else {
			report.ResumeUploaded = true
			page.WaitForTimeout(waitAfterUploadMs)
		}
	}

	for _, field := range schema.AllFields() {
		answer, ok := field.Answer()
		if !ok || field.Type == "file" {
			continue
		}

		outcome := s.fillField(page, field, answer)
		switch outcome {
		case fillOutcomeFilled:
			report.Filled = append(report.Filled, field.FieldID)
		case fillOutcomeSkipped:
			report.Skipped = append(report.Skipped, field.FieldID)
		case fillOutcomeFailed:
			report.Failed = append(report.Failed, field.FieldID)
		}
	}

	log.Printf("Fill pass done: %d filled, %d skipped, %d failed, resume uploaded=%v",
		len(report.Filled), len(report.Skipped), len(report.Failed), report.ResumeUploaded)
	return report
}

// HoldOpen keeps the page alive for manual review after filling. The pipeline
// never submits; a human takes over from here.
func (s *FormFillerService) HoldOpen(page playwright.Page, seconds int) {
	if seconds <= 0 {
		return
	}
	log.Printf("Holding page open for %d seconds for manual review", seconds)
	page.WaitForTimeout(float64(seconds) * 1000)
}

// uploadResume attaches the resume file, trying progressively blunter
// strategies: a visible file input, any file input, and finally clicking
// upload-styled buttons to force a hidden input into the DOM.
func (s *FormFillerService) uploadResume(page playwright.Page, resumePath string) error {
	visible := page.Locator("input[type='file']:visible")
	if count, err := visible.Count(); err == nil && count > 0 {
		if err := visible.First().SetInputFiles(resumePath); err == nil {
			log.Printf("Resume attached via visible file input")
			return nil
		}
	}

	anyInput := page.Locator("input[type='file']")
	if count, err := anyInput.Count(); err == nil && count > 0 {
		if err := anyInput.First().SetInputFiles(resumePath); err == nil {
			log.Printf("Resume attached via hidden file input")
			return nil
		}
	}

	uploadButtons := []string{
		"button:has-text('Upload')",
		"button:has-text('Attach')",
		"[role='button']:has-text('Upload')",
		"label:has-text('Resume')",
		"label:has-text('CV')",
	}
	for _, selector := range uploadButtons {
		btn := page.Locator(selector)
		if count, err := btn.Count(); err != nil || count == 0 {
			continue
		}
		if err := btn.First().Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(3000),
		}); err != nil {
			continue
		}
		page.WaitForTimeout(1000)
		retry := page.Locator("input[type='file']")
		if count, err := retry.Count(); err == nil && count > 0 {
			if err := retry.First().SetInputFiles(resumePath); err == nil {
				log.Printf("Resume attached after clicking %s", selector)
				return nil
			}
		}
	}

	return fmt.Errorf("no usable file input found")
}

type fillOutcome int

const (
	fillOutcomeFilled fillOutcome = iota
	fillOutcomeSkipped
	fillOutcomeFailed
)

func (s *FormFillerService) fillField(page playwright.Page, field *models.FormField, answer string) fillOutcome {
	loc := ResolveLocator(page, field)
	if loc == nil {
		log.Printf("Field %s: no locator resolved, skipping", field.FieldID)
		return fillOutcomeFailed
	}

	switch field.Type {
	case "checkbox":
		return s.fillCheckbox(page, loc, field, answer)
	case "radio":
		return s.fillRadio(loc, field, answer)
	case "select":
		return s.fillSelect(loc, field, answer)
	case "combobox", "custom":
		return s.fillCombobox(page, loc, field, answer)
	default:
		return s.fillText(loc, field, answer)
	}
}

// fillText handles text-like inputs and textareas. Prefilled values are left
// alone: resume-parse autofill has already done the work and is usually more
// trustworthy than a generated answer.
func (s *FormFillerService) fillText(loc playwright.Locator, field *models.FormField, answer string) fillOutcome {
	if existing, err := loc.InputValue(); err == nil && strings.TrimSpace(existing) != "" {
		log.Printf("Field %s already has a value, skipping", field.FieldID)
		return fillOutcomeSkipped
	}
	if err := loc.Fill(answer); err != nil {
		log.Printf("Field %s: fill failed: %v", field.FieldID, err)
		return fillOutcomeFailed
	}
	return fillOutcomeFilled
}

// fillCheckbox checks the box only for a "true" answer; a "false" answer is a
// no-op, never an uncheck. Strategies escalate from the direct check to
// clicking, since many styled checkboxes intercept pointer events on a
// wrapper element.
func (s *FormFillerService) fillCheckbox(page playwright.Page, loc playwright.Locator, field *models.FormField, answer string) fillOutcome {
	if answer != "true" {
		return fillOutcomeSkipped
	}

	if checked, err := loc.IsChecked(); err == nil && checked {
		return fillOutcomeSkipped
	}

	if err := loc.Check(playwright.LocatorCheckOptions{Timeout: playwright.Float(3000)}); err == nil {
		return fillOutcomeFilled
	}
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err == nil {
		return fillOutcomeFilled
	}
	if field.Label != "" {
		byRole := page.GetByRole(*playwright.AriaRoleCheckbox, playwright.PageGetByRoleOptions{
			Name: field.Label,
		})
		if err := byRole.First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err == nil {
			return fillOutcomeFilled
		}
		byText := page.GetByText(field.Label)
		if err := byText.First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err == nil {
			return fillOutcomeFilled
		}
	}

	log.Printf("Field %s: all checkbox strategies failed", field.FieldID)
	return fillOutcomeFailed
}

func (s *FormFillerService) fillRadio(loc playwright.Locator, field *models.FormField, answer string) fillOutcome {
	if answer != "true" {
		return fillOutcomeSkipped
	}
	if err := loc.Check(playwright.LocatorCheckOptions{Timeout: playwright.Float(3000)}); err == nil {
		return fillOutcomeFilled
	}
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err == nil {
		return fillOutcomeFilled
	}
	log.Printf("Field %s: radio select failed", field.FieldID)
	return fillOutcomeFailed
}

// fillSelect picks the option whose visible label matches the answer. When no
// label matches, the control is merely clicked open and the value is left for
// manual completion instead of guessing among the remaining options.
func (s *FormFillerService) fillSelect(loc playwright.Locator, field *models.FormField, answer string) fillOutcome {
	if _, err := loc.SelectOption(playwright.SelectOptionValues{
		Labels: &[]string{answer},
	}); err == nil {
		return fillOutcomeFilled
	}

	if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err != nil {
		log.Printf("Field %s: could not open select: %v", field.FieldID, err)
	}
	log.Printf("Field %s: no select option labeled %q, left for manual completion", field.FieldID, answer)
	return fillOutcomeFailed
}

// fillCombobox drives custom dropdown widgets: open, type, pick the first
// matching option, falling back to Enter when no option list materializes.
func (s *FormFillerService) fillCombobox(page playwright.Page, loc playwright.Locator, field *models.FormField, answer string) fillOutcome {
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err != nil {
		log.Printf("Field %s: combobox open failed: %v", field.FieldID, err)
		return fillOutcomeFailed
	}
	if err := loc.Fill(answer); err != nil {
		if err := page.Keyboard().Type(answer); err != nil {
			log.Printf("Field %s: combobox type failed: %v", field.FieldID, err)
			return fillOutcomeFailed
		}
	}
	page.WaitForTimeout(500)

	option := page.Locator(fmt.Sprintf("[role='option']:has-text(%q)", answer))
	if count, err := option.Count(); err == nil && count > 0 {
		if err := option.First().Click(playwright.LocatorClickOptions{Timeout: playwright.Float(3000)}); err == nil {
			return fillOutcomeFilled
		}
	}

	if err := page.Keyboard().Press("Enter"); err != nil {
		return fillOutcomeFailed
	}
	return fillOutcomeFilled
}
