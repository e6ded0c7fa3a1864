package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickResumePDFFindsNestedResume(t *testing.T) {
	root := t.TempDir()
	resumeDir := filepath.Join(root, "alex", "resume_pdf", "2026")
	require.NoError(t, os.MkdirAll(resumeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(resumeDir, "resume.pdf"), []byte("%PDF"), 0o644))

	// Files outside a resume_pdf directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "alex", "resume.pdf"), []byte("%PDF"), 0o644))

	svc := NewResumeService(root)
	picked := svc.PickResumePDF("alex")

	assert.Equal(t, filepath.Join(resumeDir, "resume.pdf"), picked)
}

func TestPickResumePDFEmptyWhenNoneExist(t *testing.T) {
	svc := NewResumeService(t.TempDir())
	assert.Empty(t, svc.PickResumePDF("alex"))
	assert.Empty(t, svc.PickResumePDF(""))
}

func TestListProfilesSkipsFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alex"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))

	svc := NewResumeService(root)
	assert.Equal(t, []string{"alex"}, svc.ListProfiles())
}

func TestExtractResumeTextRejectsUnknownFormat(t *testing.T) {
	svc := NewResumeService(t.TempDir())
	_, err := svc.ExtractResumeText("/tmp/resume.txt")
	assert.Error(t, err)
}
