package services

import (
	"errors"

	"github.com/playwright-community/playwright-go"
)

// The playwright interfaces declare methods named after their own types
// (Locator has a Locator method), so embedding them directly would leave the
// embedded field shadowing the promoted method. Embedding through an alias
// keeps the full method set promoted.
type plocator = playwright.Locator

type ppage = playwright.Page

// fakeLocator stands in for a live element. Only the methods the code under
// test actually calls are implemented; anything else panics via the embedded
// nil interface, which would flag an unexpected call.
type fakeLocator struct {
	plocator

	count    int
	countErr error

	inputValue string
	inputErr   error

	fillErr error
	filled  []string

	checked    bool
	checkErr   error
	checkCalls int

	clickErr   error
	clickCalls int

	selectAccept  map[string]bool
	selectedWith  []string
	setInputFiles []interface{}
}

func (l *fakeLocator) Count() (int, error) { return l.count, l.countErr }

func (l *fakeLocator) First() playwright.Locator { return l }

func (l *fakeLocator) Nth(index int) playwright.Locator { return l }

func (l *fakeLocator) Fill(value string, options ...playwright.LocatorFillOptions) error {
	if l.fillErr != nil {
		return l.fillErr
	}
	l.filled = append(l.filled, value)
	return nil
}

func (l *fakeLocator) InputValue(options ...playwright.LocatorInputValueOptions) (string, error) {
	return l.inputValue, l.inputErr
}

func (l *fakeLocator) IsChecked(options ...playwright.LocatorIsCheckedOptions) (bool, error) {
	return l.checked, nil
}

func (l *fakeLocator) Check(options ...playwright.LocatorCheckOptions) error {
	l.checkCalls++
	return l.checkErr
}

func (l *fakeLocator) Click(options ...playwright.LocatorClickOptions) error {
	l.clickCalls++
	return l.clickErr
}

func (l *fakeLocator) SelectOption(values playwright.SelectOptionValues, options ...playwright.LocatorSelectOptionOptions) ([]string, error) {
	var requested []string
	if values.Labels != nil {
		requested = *values.Labels
	} else if values.Values != nil {
		requested = *values.Values
	}
	l.selectedWith = append(l.selectedWith, requested...)
	for _, r := range requested {
		if l.selectAccept[r] {
			return requested, nil
		}
	}
	return nil, errors.New("no matching option")
}

func (l *fakeLocator) SetInputFiles(files interface{}, options ...playwright.LocatorSetInputFilesOptions) error {
	l.setInputFiles = append(l.setInputFiles, files)
	return nil
}

// fakePage serves canned locators by selector; everything else resolves to
// an empty locator. Navigation and evaluation are no-ops that record the
// URLs visited.
type fakePage struct {
	ppage

	locators      map[string]*fakeLocator
	byLabel       *fakeLocator
	byRole        *fakeLocator
	byPlaceholder *fakeLocator
	byText        *fakeLocator

	visited []string
}

func emptyLocator() *fakeLocator { return &fakeLocator{count: 0} }

func (p *fakePage) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	if loc, ok := p.locators[selector]; ok {
		return loc
	}
	return emptyLocator()
}

func (p *fakePage) GetByLabel(text interface{}, options ...playwright.PageGetByLabelOptions) playwright.Locator {
	if p.byLabel != nil {
		return p.byLabel
	}
	return emptyLocator()
}

func (p *fakePage) GetByRole(role playwright.AriaRole, options ...playwright.PageGetByRoleOptions) playwright.Locator {
	if p.byRole != nil {
		return p.byRole
	}
	return emptyLocator()
}

func (p *fakePage) GetByPlaceholder(text interface{}, options ...playwright.PageGetByPlaceholderOptions) playwright.Locator {
	if p.byPlaceholder != nil {
		return p.byPlaceholder
	}
	return emptyLocator()
}

func (p *fakePage) GetByText(text interface{}, options ...playwright.PageGetByTextOptions) playwright.Locator {
	if p.byText != nil {
		return p.byText
	}
	return emptyLocator()
}

func (p *fakePage) WaitForTimeout(timeout float64) {}

func (p *fakePage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	p.visited = append(p.visited, url)
	return nil, nil
}

func (p *fakePage) WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error {
	return nil
}

func (p *fakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	return nil, nil
}
