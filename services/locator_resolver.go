package services

import (
	"log"
	"strconv"
	"strings"

	"github.com/playwright-community/playwright-go"

	"applyai/models"
)

// ResolveLocator turns a field's recorded locator hints back into a live
// Locator. Strategies are tried in order of specificity; the first one that
// matches at least one element wins. Exhaustion returns nil rather than an
// error so that callers can skip the field and keep filling.
func ResolveLocator(page playwright.Page, field *models.FormField) playwright.Locator {
	if loc := resolveByCSS(page, field); loc != nil {
		return loc
	}
	if loc := resolveByXPath(page, field); loc != nil {
		return loc
	}
	if loc := resolveByRole(page, field); loc != nil {
		return loc
	}
	if loc := resolveByLabel(page, field); loc != nil {
		return loc
	}
	if loc := resolveByPlaceholder(page, field); loc != nil {
		return loc
	}
	if loc := resolveByText(page, field); loc != nil {
		return loc
	}
	if loc := resolveByNth(page, field); loc != nil {
		return loc
	}
	log.Printf("No locator strategy matched for %s (%s)", field.FieldID, field.Label)
	return nil
}

func firstIfPresent(loc playwright.Locator) playwright.Locator {
	count, err := loc.Count()
	if err != nil || count == 0 {
		return nil
	}
	return loc.First()
}

func resolveByCSS(page playwright.Page, field *models.FormField) playwright.Locator {
	if field.Locators.CSS == "" {
		return nil
	}
	return firstIfPresent(page.Locator(field.Locators.CSS))
}

func resolveByXPath(page playwright.Page, field *models.FormField) playwright.Locator {
	if field.Locators.XPath == "" {
		return nil
	}
	return firstIfPresent(page.Locator("xpath=" + field.Locators.XPath))
}

// resolveByRole handles checkbox and radio widgets whose accessible name is
// the only stable handle, a common shape in consent checkboxes.
func resolveByRole(page playwright.Page, field *models.FormField) playwright.Locator {
	if field.Label == "" {
		return nil
	}
	var role playwright.AriaRole
	switch field.Type {
	case "checkbox":
		role = *playwright.AriaRoleCheckbox
	case "radio":
		role = *playwright.AriaRoleRadio
	default:
		return nil
	}
	return firstIfPresent(page.GetByRole(role, playwright.PageGetByRoleOptions{
		Name:  field.Label,
		Exact: playwright.Bool(true),
	}))
}

func resolveByLabel(page playwright.Page, field *models.FormField) playwright.Locator {
	if field.Label == "" {
		return nil
	}
	return firstIfPresent(page.GetByLabel(field.Label, playwright.PageGetByLabelOptions{
		Exact: playwright.Bool(true),
	}))
}

func resolveByPlaceholder(page playwright.Page, field *models.FormField) playwright.Locator {
	if field.Placeholder == "" {
		return nil
	}
	return firstIfPresent(page.GetByPlaceholder(field.Placeholder))
}

func resolveByText(page playwright.Page, field *models.FormField) playwright.Locator {
	if field.Label == "" {
		return nil
	}
	return firstIfPresent(page.GetByText(field.Label, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(true),
	}))
}

// resolveByNth replays a positional fallback of the form "tag[idx]" recorded
// at extraction time. Positional locators are fragile; this runs last.
func resolveByNth(page playwright.Page, field *models.FormField) playwright.Locator {
	nth := field.Locators.Nth
	if nth == "" {
		return nil
	}
	open := strings.Index(nth, "[")
	if open <= 0 || !strings.HasSuffix(nth, "]") {
		return nil
	}
	tag := nth[:open]
	idx, err := strconv.Atoi(nth[open+1 : len(nth)-1])
	if err != nil || idx < 0 {
		return nil
	}
	loc := page.Locator(tag)
	count, err := loc.Count()
	if err != nil || idx >= count {
		return nil
	}
	return loc.Nth(idx)
}
