package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"applyai/models"
)

func TestResolveLocatorExhaustionReturnsNil(t *testing.T) {
	page := &fakePage{}

	// No hints at all: nothing to try.
	assert.Nil(t, ResolveLocator(page, &models.FormField{FieldID: "field_0"}))

	// Hints that all miss.
	field := &models.FormField{
		FieldID:     "field_1",
		Label:       "First Name",
		Placeholder: "Your first name",
		Type:        "text",
		Locators:    models.FieldLocator{CSS: "#missing", Nth: "input[5]"},
	}
	assert.Nil(t, ResolveLocator(page, field))
}

func TestResolveLocatorPrefersCSS(t *testing.T) {
	cssHit := &fakeLocator{count: 1}
	page := &fakePage{
		locators: map[string]*fakeLocator{"#fname": cssHit},
		byLabel:  &fakeLocator{count: 1},
	}
	field := &models.FormField{
		FieldID:  "field_0",
		Label:    "First Name",
		Locators: models.FieldLocator{CSS: "#fname"},
	}

	assert.Same(t, cssHit, ResolveLocator(page, field))
}

func TestResolveLocatorFallsThroughToLabel(t *testing.T) {
	labelHit := &fakeLocator{count: 1}
	page := &fakePage{
		locators: map[string]*fakeLocator{"#gone": {count: 0}},
		byLabel:  labelHit,
	}
	field := &models.FormField{
		FieldID:  "field_0",
		Label:    "First Name",
		Type:     "text",
		Locators: models.FieldLocator{CSS: "#gone"},
	}

	assert.Same(t, labelHit, ResolveLocator(page, field))
}

func TestResolveLocatorCheckboxUsesRole(t *testing.T) {
	roleHit := &fakeLocator{count: 1}
	page := &fakePage{byRole: roleHit}
	field := &models.FormField{
		FieldID: "field_0",
		Label:   "I agree to the terms",
		Type:    "checkbox",
	}

	assert.Same(t, roleHit, ResolveLocator(page, field))
}

func TestResolveLocatorPlaceholder(t *testing.T) {
	placeholderHit := &fakeLocator{count: 1}
	page := &fakePage{byPlaceholder: placeholderHit}
	field := &models.FormField{
		FieldID:     "field_0",
		Placeholder: "you@example.com",
		Type:        "email",
	}

	assert.Same(t, placeholderHit, ResolveLocator(page, field))
}

func TestResolveLocatorNthFallback(t *testing.T) {
	inputs := &fakeLocator{count: 3}
	page := &fakePage{locators: map[string]*fakeLocator{"input": inputs}}

	field := &models.FormField{
		FieldID:  "field_2",
		Type:     "text",
		Locators: models.FieldLocator{Nth: "input[2]"},
	}
	assert.NotNil(t, ResolveLocator(page, field))

	// Index out of range: no match.
	outOfRange := &models.FormField{
		FieldID:  "field_5",
		Type:     "text",
		Locators: models.FieldLocator{Nth: "input[5]"},
	}
	assert.Nil(t, ResolveLocator(page, outOfRange))

	// Malformed positional hints never panic.
	for _, nth := range []string{"input", "[3]", "input[x]", "input[-1]", ""} {
		malformed := &models.FormField{
			FieldID:  "field_9",
			Type:     "text",
			Locators: models.FieldLocator{Nth: nth},
		}
		assert.Nil(t, ResolveLocator(page, malformed))
	}
}
