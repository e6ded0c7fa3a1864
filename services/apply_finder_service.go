package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/net/publicsuffix"
)

// maxOverviewHops bounds how many overview-page navigation links the
// validation stage will follow before giving up. Careers sites occasionally
// link overview pages in a cycle.
const maxOverviewHops = 3

// ApplyFinderService resolves a job posting into the URL of its application
// form through a staged pipeline: official company website, careers page,
// then validation and navigation to the specific posting. Every LLM response
// is treated as untrusted; a stage that cannot parse its response halts the
// resolution rather than guessing.
type ApplyFinderService struct {
	client     ChatClient
	model      string
	doNotApply map[string]bool
}

func NewApplyFinderService(client ChatClient, model string, doNotApply map[string]bool) *ApplyFinderService {
	if doNotApply == nil {
		doNotApply = map[string]bool{}
	}
	return &ApplyFinderService{client: client, model: model, doNotApply: doNotApply}
}

// LoadDoNotApplyDomains reads the exclusion list, one domain per line, with
// blank lines and #-comments skipped. A missing file is an empty list.
func LoadDoNotApplyDomains(path string) map[string]bool {
	domains := map[string]bool{}
	b, err := os.ReadFile(path)
	if err != nil {
		return domains
	}
	for _, line := range strings.Split(string(b), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		domains[strings.ToLower(s)] = true
	}
	return domains
}

// RegistrableDomain reduces a URL or hostname to its registrable domain
// (eTLD+1), so that jobs.example.co.uk and example.co.uk compare equal.
func RegistrableDomain(hostOrURL string) string {
	host := hostOrURL
	if strings.Contains(hostOrURL, "/") || strings.Contains(hostOrURL, "://") {
		if u, err := url.Parse(hostOrURL); err == nil && u.Host != "" {
			host = u.Host
		}
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}

// Allowed reports whether a domain or URL is outside the do-not-apply list.
func (s *ApplyFinderService) Allowed(hostOrURL string) bool {
	return !s.doNotApply[RegistrableDomain(hostOrURL)]
}

// ResolveApplyURL runs the staged resolution. It returns the apply URL, or
// an empty string when resolution halts, plus a trace of per-stage outcomes.
func (s *ApplyFinderService) ResolveApplyURL(ctx context.Context, page playwright.Page, jobSummary string) (string, map[string]interface{}) {
	trace := map[string]interface{}{"stages": map[string]interface{}{}}
	stages := trace["stages"].(map[string]interface{})

	officialDomain, err := s.stage1OfficialDomain(ctx, jobSummary, stages)
	if err != nil {
		log.Printf("Stage 1 halted: %v", err)
		stages["stage1_error"] = err.Error()
		return "", trace
	}
	log.Printf("Stage 1 complete: official website %s", officialDomain)

	if !s.Allowed(officialDomain) {
		log.Printf("Domain %s is on the do-not-apply list, halting", officialDomain)
		stages["excluded_domain"] = officialDomain
		return "", trace
	}

	result := s.stage2FindCareers(ctx, page, officialDomain, stages)
	if result == nil {
		log.Printf("Stage 2 halted: no careers page, apply URL, or email instructions")
		return "", trace
	}

	if result.ApplyURL != "" {
		log.Printf("Stage 2 complete: apply URL %s", result.ApplyURL)
		return s.guardResolved(result.ApplyURL, stages), trace
	}
	if result.EmailInstructions != "" {
		// Email applications are out of scope for the form pipeline.
		log.Printf("Stage 2 found email instructions only: %s", result.EmailInstructions)
		stages["email_instructions"] = result.EmailInstructions
		return "", trace
	}
	if result.CareersURL == "" {
		return "", trace
	}

	log.Printf("Stage 2 complete: careers page %s", result.CareersURL)
	if final := s.stage3ValidateAndNavigate(ctx, page, result.CareersURL, jobSummary, stages); final != "" {
		return s.guardResolved(final, stages), trace
	}
	// The careers page itself is still a usable starting point.
	return s.guardResolved(result.CareersURL, stages), trace
}

// guardResolved re-checks a resolved URL against the do-not-apply list. Model
// output and clicked-through navigation can land on a different registrable
// domain than the stage 1 official domain, so the final URL is checked again
// and discarded on a match.
func (s *ApplyFinderService) guardResolved(resolved string, stages map[string]interface{}) string {
	if resolved == "" || s.Allowed(resolved) {
		return resolved
	}
	log.Printf("Resolved URL %s is on the do-not-apply list, discarding", resolved)
	stages["excluded_domain"] = RegistrableDomain(resolved)
	return ""
}

type stage1Result struct {
	OfficialDomain string `json:"official_domain"`
	Confidence     string `json:"confidence"`
	Rationale      string `json:"rationale"`
}

// stage1OfficialDomain extracts the company name from the job summary, then
// asks for the company's official domain. Both calls are pure LLM; no page
// interaction happens before stage 2.
func (s *ApplyFinderService) stage1OfficialDomain(ctx context.Context, jobSummary string, stages map[string]interface{}) (string, error) {
	if s.client == nil {
		return "", ErrAINotConfigured
	}

	companyName, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "user", Content: fmt.Sprintf(
			"Extract the company name from this job posting summary. Return only the company name, nothing else.\n\nJob posting: %s",
			jobSummary)},
	}, false)
	if err != nil {
		return "", fmt.Errorf("company extraction failed: %w", err)
	}
	companyName = strings.TrimSpace(companyName)
	log.Printf("Company name extracted: %s", companyName)

	searchPrompt := fmt.Sprintf(`Find the official company website for %q.

Return ONLY a valid JSON object with these exact keys:
- "official_domain": The official company domain (e.g., "example.com")
- "confidence": High/Medium/Low
- "rationale": Brief explanation of why this is the official site

Avoid aggregator sites, job boards, or social media profiles. Focus on the company's main website.`, companyName)

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "user", Content: searchPrompt},
	}, true)
	if err != nil {
		return "", fmt.Errorf("official website search failed: %w", err)
	}

	var result stage1Result
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &result); err != nil {
		return "", fmt.Errorf("unparseable stage 1 response: %w", err)
	}
	if result.OfficialDomain == "" {
		return "", fmt.Errorf("stage 1 returned no official domain")
	}
	stages["stage1"] = result
	return result.OfficialDomain, nil
}

type stage2Result struct {
	CareersURL        string
	ApplyURL          string
	EmailInstructions string
}

type linkAnalysis struct {
	CareersLinks      []string `json:"careers_links"`
	AboutLinks        []string `json:"about_links"`
	EmailInstructions string   `json:"email_instructions"`
	Analysis          string   `json:"analysis"`
}

// stage2FindCareers loads the company homepage, gathers links from it and up
// to two about pages, and asks the model which of them lead to careers
// content.
func (s *ApplyFinderService) stage2FindCareers(ctx context.Context, page playwright.Page, officialDomain string, stages map[string]interface{}) *stage2Result {
	mainURL := "https://" + officialDomain
	if err := NavigateAndSettle(page, mainURL, 15000); err != nil {
		log.Printf("Stage 2: could not load %s: %v", mainURL, err)
		return nil
	}
	ScrollToLoadContent(page, 5)

	allLinks := CollectLinks(page, mainURL)
	log.Printf("Found %d links on main page", len(allLinks))

	// About pages frequently hold the only careers link on minimal sites.
	var aboutLinks []PageLink
	for _, link := range allLinks {
		text := strings.ToLower(link.Text)
		if strings.Contains(text, "about") || strings.Contains(text, "company") || strings.Contains(text, "team") {
			aboutLinks = append(aboutLinks, link)
		}
	}
	for i, about := range aboutLinks {
		if i >= 2 {
			break
		}
		if err := NavigateAndSettle(page, about.URL, 10000); err != nil {
			log.Printf("Stage 2: about page %s failed: %v", about.URL, err)
			continue
		}
		ScrollToLoadContent(page, 1)
		allLinks = append(allLinks, CollectLinks(page, about.URL)...)
	}

	analysis := s.analyzeLinks(ctx, allLinks, stages)
	if analysis == nil {
		return nil
	}

	if len(analysis.CareersLinks) > 0 {
		careersURL := analysis.CareersLinks[0]
		log.Printf("Visiting careers page: %s", careersURL)
		if result := s.analyzeCareersPage(ctx, page, careersURL); result != nil {
			return result
		}
	}

	if len(analysis.AboutLinks) > 0 && len(analysis.CareersLinks) == 0 {
		if result := s.analyzeAboutPage(ctx, page, analysis.AboutLinks[0]); result != nil {
			return result
		}
	}

	if analysis.EmailInstructions != "" {
		return &stage2Result{EmailInstructions: analysis.EmailInstructions}
	}
	return nil
}

func (s *ApplyFinderService) analyzeLinks(ctx context.Context, links []PageLink, stages map[string]interface{}) *linkAnalysis {
	var sb strings.Builder
	limit := len(links)
	if limit > 80 {
		limit = 80
	}
	for _, link := range links[:limit] {
		fmt.Fprintf(&sb, "- %s: %s\n", link.Text, link.URL)
	}

	prompt := fmt.Sprintf(`Analyze these links from the company's main page and about pages. Look for:
1. Careers/jobs page links (including footer links, navigation, etc.)
2. About page links (already visited)
3. Email application instructions
4. Any links that might lead to job postings

Total links found: %d
Links:
%s

Return ONLY a valid JSON object with these exact keys:
- "careers_links": List of URLs that appear to be careers/jobs pages (prioritize by relevance)
- "about_links": List of URLs that appear to be about pages (already checked)
- "email_instructions": Any text mentioning email applications
- "analysis": Brief explanation of what you found and which links look most promising`,
		len(links), sb.String())

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "user", Content: prompt},
	}, true)
	if err != nil {
		log.Printf("Stage 2 link analysis failed: %v", err)
		return nil
	}

	var analysis linkAnalysis
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &analysis); err != nil {
		log.Printf("Unparseable stage 2 link analysis: %v", err)
		return nil
	}
	stages["stage2_links"] = analysis
	log.Printf("Link analysis: %s", analysis.Analysis)
	return &analysis
}

type careersAnalysis struct {
	ApplyURL        string   `json:"apply_url"`
	Confidence      string   `json:"confidence"`
	Rationale       string   `json:"rationale"`
	AlternativeURLs []string `json:"alternative_urls"`
}

// analyzeCareersPage visits a careers page and asks for the best matching
// application URL among its links. A parse failure still returns the careers
// URL itself: the page is real even when the analysis is not.
func (s *ApplyFinderService) analyzeCareersPage(ctx context.Context, page playwright.Page, careersURL string) *stage2Result {
	if err := NavigateAndSettle(page, careersURL, 15000); err != nil {
		log.Printf("Careers page %s failed to load: %v", careersURL, err)
		return nil
	}
	ScrollToLoadContent(page, 1)

	pageText := PageText(page)
	links := CollectLinks(page, careersURL)
	limit := len(links)
	if limit > 30 {
		limit = 30
	}
	var sb strings.Builder
	for _, link := range links[:limit] {
		fmt.Fprintf(&sb, "- %s: %s\n", link.Text, link.URL)
	}

	prompt := fmt.Sprintf(`Analyze this careers page to find specific job application URLs.

Page text preview: %s

Links found:
%s

Return ONLY a valid JSON object with these exact keys:
- "apply_url": The best matching job application URL
- "confidence": High/Medium/Low
- "rationale": Why this URL was chosen
- "alternative_urls": List of other potential job URLs`,
		truncate(pageText, 1000), sb.String())

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "user", Content: prompt},
	}, true)
	if err != nil {
		log.Printf("Careers page analysis failed: %v", err)
		return &stage2Result{CareersURL: careersURL}
	}

	var analysis careersAnalysis
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &analysis); err != nil {
		log.Printf("Unparseable careers analysis, keeping careers URL")
		return &stage2Result{CareersURL: careersURL}
	}
	if analysis.ApplyURL != "" {
		return &stage2Result{ApplyURL: analysis.ApplyURL, CareersURL: careersURL}
	}
	return &stage2Result{CareersURL: careersURL}
}

// analyzeAboutPage follows careers-flavored links off an about page when the
// main page had none.
func (s *ApplyFinderService) analyzeAboutPage(ctx context.Context, page playwright.Page, aboutURL string) *stage2Result {
	if err := NavigateAndSettle(page, aboutURL, 15000); err != nil {
		log.Printf("About page %s failed to load: %v", aboutURL, err)
		return nil
	}

	for _, link := range CollectLinks(page, aboutURL) {
		text := strings.ToLower(link.Text)
		if strings.Contains(text, "career") || strings.Contains(text, "job") ||
			strings.Contains(text, "work") || strings.Contains(text, "apply") {
			log.Printf("Following careers link from about page: %s", link.URL)
			return s.analyzeCareersPage(ctx, page, link.URL)
		}
	}
	log.Printf("No careers links found on about page")
	return nil
}

type pageTypeAnalysis struct {
	PageType         string   `json:"page_type"`
	Confidence       string   `json:"confidence"`
	ApplyButtonFound bool     `json:"apply_button_found"`
	ApplyButtonText  string   `json:"apply_button_text"`
	MatchingJobLinks []string `json:"matching_job_links"`
	Rationale        string   `json:"rationale"`
}

type jobVerification struct {
	Matches          bool   `json:"matches"`
	Confidence       string `json:"confidence"`
	Rationale        string `json:"rationale"`
	ApplyButtonFound bool   `json:"apply_button_found"`
	ApplyButtonText  string `json:"apply_button_text"`
}

// stage3ValidateAndNavigate classifies the careers page as a job posting, a
// listings page, or an overview page, then navigates toward the form.
// Overview pages chain through navigation links at most maxOverviewHops
// times.
func (s *ApplyFinderService) stage3ValidateAndNavigate(ctx context.Context, page playwright.Page, careersURL, jobSummary string, stages map[string]interface{}) string {
	currentURL := careersURL

	for hop := 0; hop <= maxOverviewHops; hop++ {
		if err := NavigateAndSettle(page, currentURL, 15000); err != nil {
			log.Printf("Stage 3: could not load %s: %v", currentURL, err)
			return ""
		}
		ScrollToLoadContent(page, 8)

		pageText := PageText(page)
		links := CollectLinks(page, currentURL)

		analysis := s.classifyCareersPage(ctx, jobSummary, pageText, links)
		if analysis == nil {
			return ""
		}
		stages[fmt.Sprintf("stage3_hop%d", hop)] = analysis
		log.Printf("Page type: %s (confidence: %s)", analysis.PageType, analysis.Confidence)

		switch analysis.PageType {
		case "job_posting":
			if !analysis.ApplyButtonFound || analysis.ApplyButtonText == "" {
				log.Printf("No apply button found on job posting page")
				return ""
			}
			return s.clickApplyButton(page, analysis.ApplyButtonText, currentURL)

		case "job_listings":
			if len(analysis.MatchingJobLinks) == 0 {
				log.Printf("No matching job links found in listings")
				return ""
			}
			return s.verifyAndOpenJob(ctx, page, analysis.MatchingJobLinks[0], jobSummary)

		case "overview_page":
			next := ""
			for _, link := range links {
				text := strings.ToLower(link.Text)
				if strings.Contains(text, "job") || strings.Contains(text, "career") ||
					strings.Contains(text, "position") || strings.Contains(text, "opening") ||
					strings.Contains(text, "apply") {
					next = link.URL
					break
				}
			}
			if next == "" {
				log.Printf("No job navigation links found on overview page")
				return ""
			}
			log.Printf("Overview page, following navigation link: %s", next)
			currentURL = next

		default:
			log.Printf("Unknown page type: %s", analysis.PageType)
			return ""
		}
	}

	log.Printf("Gave up after %d overview hops", maxOverviewHops)
	return ""
}

func (s *ApplyFinderService) classifyCareersPage(ctx context.Context, jobSummary, pageText string, links []PageLink) *pageTypeAnalysis {
	limit := len(links)
	if limit > 50 {
		limit = 50
	}
	var sb strings.Builder
	for _, link := range links[:limit] {
		fmt.Fprintf(&sb, "- %s: %s\n", link.Text, link.URL)
	}

	prompt := fmt.Sprintf(`Analyze this careers page to determine its type and next steps.

Original job search: %s
Page text preview: %s

Links found (%d total):
%s

Determine if this page is:
1. A specific job posting page (with detailed job description and apply button)
2. An ATS job listings page (showing multiple job titles/positions)
3. An overview/info page (no job postings, just company info)

Return ONLY a valid JSON object with these exact keys:
- "page_type": "job_posting" | "job_listings" | "overview_page"
- "confidence": High/Medium/Low
- "apply_button_found": true/false (if page_type is "job_posting")
- "apply_button_text": "text of apply button if found"
- "matching_job_links": ["list of URLs that might match our job search"]
- "rationale": "explanation of your analysis"`,
		jobSummary, truncate(pageText, 1500), len(links), sb.String())

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "user", Content: prompt},
	}, true)
	if err != nil {
		log.Printf("Stage 3 classification failed: %v", err)
		return nil
	}

	var analysis pageTypeAnalysis
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &analysis); err != nil {
		log.Printf("Unparseable stage 3 analysis: %v", err)
		return nil
	}
	return &analysis
}

// verifyAndOpenJob opens a candidate listing link and confirms it matches the
// job we are resolving before clicking through to the application form. A
// verified match without a clickable button still returns the posting URL.
func (s *ApplyFinderService) verifyAndOpenJob(ctx context.Context, page playwright.Page, jobURL, jobSummary string) string {
	if err := NavigateAndSettle(page, jobURL, 15000); err != nil {
		log.Printf("Job link %s failed to load: %v", jobURL, err)
		return ""
	}
	ScrollToLoadContent(page, 1)

	pageText := PageText(page)
	prompt := fmt.Sprintf(`Verify if this job posting matches our original search.

Original search: %s
Current page text: %s

Return ONLY a valid JSON object with:
- "matches": true/false
- "confidence": High/Medium/Low
- "rationale": "explanation of match or mismatch"
- "apply_button_found": true/false
- "apply_button_text": "text of apply button if found"`,
		jobSummary, truncate(pageText, 1000))

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "user", Content: prompt},
	}, true)
	if err != nil {
		log.Printf("Job verification failed: %v", err)
		return jobURL
	}

	var verification jobVerification
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &verification); err != nil {
		log.Printf("Unparseable job verification, keeping job URL")
		return jobURL
	}
	log.Printf("Job match: %v (confidence: %s)", verification.Matches, verification.Confidence)

	if !verification.Matches {
		return ""
	}
	if verification.ApplyButtonFound && verification.ApplyButtonText != "" {
		if final := s.clickApplyButton(page, verification.ApplyButtonText, jobURL); final != "" {
			return final
		}
	}
	return jobURL
}

// clickApplyButton clicks the named apply control and returns the URL it
// lands on, falling back to fallbackURL when the click fails.
func (s *ApplyFinderService) clickApplyButton(page playwright.Page, buttonText, fallbackURL string) string {
	btn := page.GetByText(buttonText).First()
	if err := btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}); err != nil {
		log.Printf("Failed to click apply button %q: %v", buttonText, err)
		return fallbackURL
	}
	page.WaitForTimeout(2000)
	landed := page.URL()
	log.Printf("Navigated to: %s", landed)
	return landed
}

type singleShotPick struct {
	OfficialDomain string `json:"official_domain"`
	CareersURL     string `json:"careers_url"`
	ApplyURL       string `json:"apply_url"`
	Confidence     string `json:"confidence"`
	Rationale      string `json:"rationale"`
}

// SingleShotResolve is the one-call variant: the model sees the job page's
// links and text once and picks the apply URL directly. Cheaper and less
// reliable than the staged resolver; used as a fast first attempt.
func (s *ApplyFinderService) SingleShotResolve(ctx context.Context, page playwright.Page, jobURL, jobSummary string) string {
	if err := NavigateAndSettle(page, jobURL, 15000); err != nil {
		log.Printf("Single-shot: could not load %s: %v", jobURL, err)
		return ""
	}
	ScrollToLoadContent(page, 3)

	links := CollectLinks(page, jobURL)
	limit := len(links)
	if limit > 60 {
		limit = 60
	}
	var sb strings.Builder
	for _, link := range links[:limit] {
		fmt.Fprintf(&sb, "- %s: %s\n", link.Text, link.URL)
	}

	prompt := fmt.Sprintf(`Given this job posting page, identify where to apply.

Job summary: %s
Page URL: %s
Page text preview: %s

Links on page:
%s

Return ONLY a valid JSON object with these exact keys:
- "official_domain": the company's official domain
- "careers_url": the company careers page URL if visible
- "apply_url": the direct application form URL if visible
- "confidence": High/Medium/Low
- "rationale": brief explanation`,
		jobSummary, jobURL, truncate(PageText(page), 1500), sb.String())

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "user", Content: prompt},
	}, true)
	if err != nil {
		log.Printf("Single-shot resolve failed: %v", err)
		return ""
	}

	var pick singleShotPick
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &pick); err != nil {
		log.Printf("Unparseable single-shot response: %v", err)
		return ""
	}

	candidate := pick.ApplyURL
	if candidate == "" {
		candidate = pick.CareersURL
	}
	if candidate == "" || !s.Allowed(candidate) {
		return ""
	}
	return candidate
}

// GenerateSearchQueries builds web search queries for a company and role:
// deterministic seeds plus an optional LLM refinement. Any refinement
// failure falls back to the seeds alone.
func (s *ApplyFinderService) GenerateSearchQueries(ctx context.Context, company, title, companyDomain string) []string {
	var seeds []string
	if companyDomain != "" {
		seeds = append(seeds,
			fmt.Sprintf("site:%s careers", companyDomain),
			fmt.Sprintf("site:%s jobs", companyDomain),
			fmt.Sprintf("site:%s %s", companyDomain, title),
		)
	}
	seeds = append(seeds,
		fmt.Sprintf("%s careers", company),
		fmt.Sprintf("%s jobs %s", company, title),
	)

	if s.client == nil {
		return seeds
	}

	domainLabel := companyDomain
	if domainLabel == "" {
		domainLabel = "(unknown)"
	}
	prompt := fmt.Sprintf(
		"Generate 3-5 concise search queries to find the official company careers or job listing "+
			"for the given company and role. Prefer site: filters if a company domain is provided. "+
			"Company: %s\nTitle: %s\nDomain: %s",
		company, title, domainLabel)

	raw, err := s.client.CreateChatCompletion(ctx, s.model, []ChatMessage{
		{Role: "system", Content: "Return only search queries, one per line."},
		{Role: "user", Content: prompt},
	}, false)
	if err != nil {
		return seeds
	}

	queries := seeds
	seen := map[string]bool{}
	for _, q := range seeds {
		seen[q] = true
	}
	for _, line := range strings.Split(raw, "\n") {
		q := strings.Trim(strings.TrimSpace(line), "-• \t")
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		queries = append(queries, q)
	}
	return queries
}

// atsHints are ATS hosting domains worth accepting from search results when
// the official company domain is unknown.
var atsHints = []string{
	"greenhouse.io",
	"boards.greenhouse.io",
	"lever.co",
	"jobs.ashbyhq.com",
	"workable.com",
}

// SearchApplyURL resolves an apply URL through web search results, preferring
// hits on the official company domain and falling back to known ATS hosts.
func (s *ApplyFinderService) SearchApplyURL(ctx context.Context, page playwright.Page, company, title, companyDomain string) string {
	for _, query := range s.GenerateSearchQueries(ctx, company, title, companyDomain) {
		results := DuckDuckGoSearch(page, query, 10)
		for _, r := range results {
			if companyDomain != "" && RegistrableDomain(r) == RegistrableDomain(companyDomain) {
				return r
			}
		}
		for _, r := range results {
			for _, hint := range atsHints {
				if strings.Contains(r, hint) {
					return r
				}
			}
		}
	}
	return ""
}

// DuckDuckGoSearch runs a query against the DuckDuckGo HTML endpoint and
// returns result URLs. The a.result__a selector is stable on the lite
// version.
func DuckDuckGoSearch(page playwright.Page, query string, limit int) []string {
	searchURL := "https://duckduckgo.com/html/?q=" + url.QueryEscape(query)
	if _, err := page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		log.Printf("Search failed for %q: %v", query, err)
		return nil
	}

	result, err := page.Evaluate(`() => Array.from(document.querySelectorAll("a.result__a")).map(e => e.href)`)
	if err != nil {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	var hrefs []string
	if err := json.Unmarshal(b, &hrefs); err != nil {
		return nil
	}
	if len(hrefs) > limit {
		hrefs = hrefs[:limit]
	}
	return hrefs
}

// FindCompanyHomepage guesses the company homepage from a job board page by
// picking the most frequent external registrable domain among its links,
// skipping the board's own domain and the do-not-apply list.
func (s *ApplyFinderService) FindCompanyHomepage(page playwright.Page) string {
	links := CollectLinks(page, page.URL())
	if len(links) == 0 {
		return ""
	}
	jobHost := RegistrableDomain(page.URL())

	counts := map[string]int{}
	for _, link := range links {
		d := RegistrableDomain(link.URL)
		if d == "" || d == jobHost || s.doNotApply[d] {
			continue
		}
		counts[d]++
	}

	winner := ""
	best := 0
	for d, n := range counts {
		if n > best {
			winner, best = d, n
		}
	}
	if winner == "" {
		return ""
	}
	return "https://" + winner
}
