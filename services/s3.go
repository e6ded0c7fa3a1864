package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Service syncs resume files from a shared bucket into the local
// user-profiles tree, so that profiles maintained elsewhere stay usable by
// the fill pipeline.
type S3Service struct {
	s3Client   *s3.S3
	downloader *s3manager.Downloader
	bucket     string
	region     string
}

func NewS3Service() (*S3Service, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	region := os.Getenv("AWS_REGION")
	bucket := os.Getenv("AWS_S3_BUCKET")

	if accessKey == "" || secretKey == "" || region == "" || bucket == "" {
		return nil, fmt.Errorf("AWS credentials not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Service{
		s3Client:   s3.New(sess),
		downloader: s3manager.NewDownloader(sess),
		bucket:     bucket,
		region:     region,
	}, nil
}

// ListResumes lists resume object keys under the given profile prefix.
func (s *S3Service) ListResumes(profile string) ([]string, error) {
	prefix := profile
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var keys []string
	err := s.s3Client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			ext := strings.ToLower(filepath.Ext(key))
			if ext == ".pdf" || ext == ".docx" {
				keys = append(keys, key)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %v", err)
	}
	return keys, nil
}

// DownloadResume fetches one object into the profiles tree, preserving its
// key as the relative path.
func (s *S3Service) DownloadResume(key, profilesRoot string) (string, error) {
	localPath := filepath.Join(profilesRoot, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %v", err)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer f.Close()

	_, err = s.downloader.Download(f, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to download %s: %v", key, err)
	}

	log.Printf("Downloaded resume %s to %s", key, localPath)
	return localPath, nil
}

// SyncProfile downloads every resume under the profile prefix, returning the
// local paths. Individual download failures are logged and skipped.
func (s *S3Service) SyncProfile(profile, profilesRoot string) ([]string, error) {
	keys, err := s.ListResumes(profile)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, key := range keys {
		path, err := s.DownloadResume(key, profilesRoot)
		if err != nil {
			log.Printf("Skipping %s: %v", key, err)
			continue
		}
		paths = append(paths, path)
	}
	log.Printf("Synced %d of %d resumes for profile %q", len(paths), len(keys), profile)
	return paths, nil
}
