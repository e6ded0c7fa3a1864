package services

import (
	"fmt"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"applyai/parsers"
)

// ResumeService locates resume files inside the user-profiles tree and turns
// them into plain text for answer generation.
//
// The expected layout is user_profiles/<profile>/resume_pdf/**/resume.pdf,
// with optional DOCX variants alongside.
type ResumeService struct {
	profilesRoot string
	pdf          *parsers.PDFExtractor
	docx         *parsers.DocxExtractor
}

func NewResumeService(profilesRoot string) *ResumeService {
	return &ResumeService{
		profilesRoot: profilesRoot,
		pdf:          parsers.NewPDFExtractor(),
		docx:         parsers.NewDocxExtractor(),
	}
}

// ListProfiles returns the profile directory names under the profiles root.
func (s *ResumeService) ListProfiles() []string {
	entries, err := os.ReadDir(s.profilesRoot)
	if err != nil {
		return nil
	}
	var profiles []string
	for _, e := range entries {
		if e.IsDir() {
			profiles = append(profiles, e.Name())
		}
	}
	return profiles
}

// ProfileDir returns the directory for one profile, or the whole root when
// profile is empty.
func (s *ResumeService) ProfileDir(profile string) string {
	if profile == "" {
		return s.profilesRoot
	}
	return filepath.Join(s.profilesRoot, profile)
}

// PickResumePDF finds every resume.pdf under a resume_pdf directory in the
// profile tree and picks one at random. Returns an empty string when none
// exist.
func (s *ResumeService) PickResumePDF(profile string) string {
	root := s.ProfileDir(profile)

	var candidates []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Name() != "resume.pdf" {
			return nil
		}
		if strings.Contains(filepath.ToSlash(path), "/resume_pdf/") {
			candidates = append(candidates, path)
		}
		return nil
	})

	if len(candidates) == 0 {
		log.Printf("No resume.pdf found under %s", root)
		return ""
	}
	chosen := candidates[rand.Intn(len(candidates))]
	log.Printf("Selected resume: %s", chosen)
	return chosen
}

// ExtractResumeText extracts plain text from a PDF or DOCX resume.
func (s *ResumeService) ExtractResumeText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return s.pdf.ExtractText(path)
	case ".docx":
		return s.docx.ExtractText(path)
	default:
		return "", fmt.Errorf("unsupported resume format: %s", path)
	}
}
