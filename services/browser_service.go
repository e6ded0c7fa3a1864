package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"

	"github.com/playwright-community/playwright-go"
)

// BrowserService owns the Playwright lifecycle for a pipeline run. All
// browser interaction is single-page and cooperatively sequenced; the page is
// owned exclusively by the calling flow.
type BrowserService struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewBrowserService starts Playwright and launches a Chromium instance.
// Failure here is fatal for the run; there is no pipeline without a browser.
func NewBrowserService(headless bool) (*BrowserService, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &BrowserService{pw: pw, browser: browser}, nil
}

// NewPage opens a fresh page in a new context.
func (s *BrowserService) NewPage() (playwright.Page, error) {
	ctx, err := s.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

// Close tears down the browser and the Playwright driver.
func (s *BrowserService) Close() {
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		_ = s.pw.Stop()
	}
}

// NavigateAndSettle loads a URL waiting for DOMContentLoaded, then waits for
// network idle as a soft signal only: an idle timeout is swallowed and the
// page is assumed usable, matching how heavy SPA careers pages behave.
func NavigateAndSettle(page playwright.Page, targetURL string, timeoutMs float64) error {
	_, err := page.Goto(targetURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(timeoutMs),
	})
	if err != nil {
		return fmt.Errorf("goto %s failed: %w", targetURL, err)
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(10000),
	}); err != nil {
		log.Printf("networkidle wait timed out for %s, continuing", targetURL)
	}
	return nil
}

// ScrollToLoadContent scrolls through the page in chunks to trigger lazy
// content, then returns to the top.
func ScrollToLoadContent(page playwright.Page, chunks int) {
	_, _ = page.Evaluate("window.scrollTo(0, 0)")
	page.WaitForTimeout(500)

	for i := 0; i < chunks; i++ {
		_, _ = page.Evaluate(fmt.Sprintf("window.scrollTo(0, %d)", (i+1)*1000))
		page.WaitForTimeout(300)
	}

	_, _ = page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	page.WaitForTimeout(1000)

	_, _ = page.Evaluate("window.scrollTo(0, 0)")
	page.WaitForTimeout(500)
}

// PageLink is one anchor collected from a page.
type PageLink struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

const collectLinksJS = `
() => {
  const anchors = document.querySelectorAll('a[href]');
  return Array.from(anchors).map(a => ({
    text: a.textContent.trim(),
    href: a.href,
    title: a.title || ''
  })).filter(link => link.text.length > 0);
}`

// CollectLinks extracts all anchors with text from the page and resolves
// their hrefs against baseURL.
func CollectLinks(page playwright.Page, baseURL string) []PageLink {
	result, err := page.Evaluate(collectLinksJS)
	if err != nil {
		log.Printf("link collection failed: %v", err)
		return nil
	}

	var raw []struct {
		Text  string `json:"text"`
		Href  string `json:"href"`
		Title string `json:"title"`
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	links := make([]PageLink, 0, len(raw))
	for _, r := range raw {
		absolute := r.Href
		if base != nil {
			if ref, err := url.Parse(r.Href); err == nil {
				absolute = base.ResolveReference(ref).String()
			}
		}
		links = append(links, PageLink{Text: r.Text, URL: absolute, Title: r.Title})
	}
	return links
}

// PageText returns the rendered body text of the page.
func PageText(page playwright.Page) string {
	result, err := page.Evaluate("document.body.innerText")
	if err != nil {
		return ""
	}
	text, _ := result.(string)
	return text
}
