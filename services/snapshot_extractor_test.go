package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotMainHTML = `<!DOCTYPE html>
<html>
<body>
  <h1>Apply for Software Engineer</h1>
  <form>
    <label for="first">First Name</label>
    <input id="first" name="first_name" type="text" required>
    <label for="last">Last Name</label>
    <input id="last" name="last_name" type="text">
    <label for="mail">Email</label>
    <input id="mail" name="email" type="email" aria-required="true">
    <input type="hidden" name="csrf" value="tok">
    <div style="display: none">
      <input name="honeypot" type="text">
    </div>
    <select id="source" name="source">
      <option>LinkedIn</option>
      <option>Referral</option>
    </select>
    <input name="resume" type="file">
    <button>Submit Application</button>
  </form>
</body>
</html>`

const snapshotFrameHTML = `<!DOCTYPE html>
<html>
<body>
  <textarea name="cover_letter" placeholder="Cover letter"></textarea>
</body>
</html>`

func writeSnapshotFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dom.html"), []byte(snapshotMainHTML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-1.html"), []byte(snapshotFrameHTML), 0o644))

	manifest := `{
  "url": "https://acme.com/careers/apply",
  "captured_at": "2026-08-01T12:00:00Z",
  "page_dom_html": "dom.html",
  "frames": [{"url": "https://ats.example.com/embed", "path": "frame-1.html", "dom_path": "frame-1.html"}]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifest), 0o644))
	return dir
}

func TestSnapshotExtractorBuildsValidSchema(t *testing.T) {
	dir := writeSnapshotFixture(t)

	schema, err := NewSnapshotExtractor().ExtractFromSnapshot(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://acme.com/careers/apply", schema.URL)
	assert.True(t, schema.Validity.IsValidJobApplicationForm)
	assert.GreaterOrEqual(t, schema.Validity.Confidence, 0.8)

	fields := schema.AllFields()
	// Hidden csrf input and honeypot inside display:none are dropped; the
	// frame's textarea is aggregated after the main document's fields.
	names := map[string]bool{}
	for _, f := range fields {
		names[f.Name] = true
	}
	assert.False(t, names["csrf"])
	assert.False(t, names["honeypot"])
	assert.True(t, names["cover_letter"])
	assert.True(t, names["resume"])
}

func TestSnapshotExtractorIsIdempotent(t *testing.T) {
	dir := writeSnapshotFixture(t)
	extractor := NewSnapshotExtractor()

	first, err := extractor.ExtractFromSnapshot(dir)
	require.NoError(t, err)
	second, err := extractor.ExtractFromSnapshot(dir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSnapshotExtractorFieldIDsUniqueAcrossFrames(t *testing.T) {
	dir := writeSnapshotFixture(t)

	schema, err := NewSnapshotExtractor().ExtractFromSnapshot(dir)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, f := range schema.AllFields() {
		assert.False(t, seen[f.FieldID], "duplicate field id %s", f.FieldID)
		seen[f.FieldID] = true
	}
}

func TestSnapshotExtractorReadsLabelsAndOptions(t *testing.T) {
	dir := writeSnapshotFixture(t)

	schema, err := NewSnapshotExtractor().ExtractFromSnapshot(dir)
	require.NoError(t, err)

	var email, source *modelsField
	for _, f := range schema.AllFields() {
		switch f.Name {
		case "email":
			email = &modelsField{f.Label, f.Required, f.Options}
		case "source":
			source = &modelsField{f.Label, f.Required, f.Options}
		}
	}

	require.NotNil(t, email)
	assert.Equal(t, "Email", email.label)
	assert.True(t, email.required)

	require.NotNil(t, source)
	assert.Equal(t, []string{"LinkedIn", "Referral"}, source.options)
}

type modelsField struct {
	label    string
	required bool
	options  []string
}

func TestStaticallyVisibleHonorsAncestorStyles(t *testing.T) {
	dir := t.TempDir()
	html := `<html><body>
	  <div hidden><input name="a" type="text"></div>
	  <div style="visibility:hidden"><input name="b" type="text"></div>
	  <input name="c" type="text">
	</body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dom.html"), []byte(html), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"),
		[]byte(`{"url": "https://x.test", "page_dom_html": "dom.html"}`), 0o644))

	schema, err := NewSnapshotExtractor().ExtractFromSnapshot(dir)
	require.NoError(t, err)

	var visible []string
	for _, f := range schema.AllFields() {
		if f.Visible() {
			visible = append(visible, f.Name)
		}
	}
	assert.Equal(t, []string{"c"}, visible)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	assert.Error(t, err)
}
