package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// SnapshotManifest describes one captured page snapshot on disk. Paths are
// relative to the manifest's directory.
type SnapshotManifest struct {
	URL        string          `json:"url"`
	CapturedAt string          `json:"captured_at"`
	PageHTML   string          `json:"page_html"`
	PageDOM    string          `json:"page_dom_html"`
	Screenshot string          `json:"screenshot"`
	Frames     []SnapshotFrame `json:"frames"`
}

// SnapshotFrame records one captured iframe document.
type SnapshotFrame struct {
	URL     string `json:"url"`
	Path    string `json:"path"`
	DOMPath string `json:"dom_path"`
}

// SnapshotService captures page snapshots so that extraction can be replayed
// offline without a browser.
type SnapshotService struct{}

func NewSnapshotService() *SnapshotService {
	return &SnapshotService{}
}

// Capture writes the page HTML, the rendered DOM, every iframe document, and
// a full-page screenshot into dir, then writes manifest.json tying them
// together. Individual artifact failures are logged and skipped; the capture
// is best effort.
func (s *SnapshotService) Capture(page playwright.Page, dir string) (*SnapshotManifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	manifest := &SnapshotManifest{
		URL:        page.URL(),
		CapturedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if html, err := page.Content(); err == nil {
		if writeSnapshotFile(dir, "page.html", html) {
			manifest.PageHTML = "page.html"
		}
	} else {
		log.Printf("snapshot: page content failed: %v", err)
	}

	if dom := s.renderedDOM(page); dom != "" {
		if writeSnapshotFile(dir, "dom.html", dom) {
			manifest.PageDOM = "dom.html"
		}
	}

	for i, frame := range page.Frames() {
		if frame == page.MainFrame() {
			continue
		}
		content, err := frame.Content()
		if err != nil {
			log.Printf("snapshot: frame %d content failed: %v", i, err)
			continue
		}
		name := fmt.Sprintf("frame-%d.html", i)
		if writeSnapshotFile(dir, name, content) {
			manifest.Frames = append(manifest.Frames, SnapshotFrame{
				URL:     frame.URL(),
				Path:    name,
				DOMPath: name,
			})
		}
	}

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(filepath.Join(dir, "screenshot.png")),
		FullPage: playwright.Bool(true),
	}); err == nil {
		manifest.Screenshot = "screenshot.png"
	} else {
		log.Printf("snapshot: screenshot failed: %v", err)
	}

	b, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), b, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	log.Printf("Snapshot captured to %s (%d frames)", dir, len(manifest.Frames))
	return manifest, nil
}

// renderedDOM serializes the live DOM, which differs from page.Content for
// SPA pages that rewrite the document after load.
func (s *SnapshotService) renderedDOM(page playwright.Page) string {
	result, err := page.Evaluate("document.documentElement.outerHTML")
	if err != nil {
		log.Printf("snapshot: DOM serialization failed: %v", err)
		return ""
	}
	dom, _ := result.(string)
	return dom
}

func writeSnapshotFile(dir, name, content string) bool {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		log.Printf("snapshot: failed to write %s: %v", name, err)
		return false
	}
	return true
}

// LoadManifest reads manifest.json from a snapshot directory.
func LoadManifest(dir string) (*SnapshotManifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m SnapshotManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}
