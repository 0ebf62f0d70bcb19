package service

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"lifeboard/internal/middleware"
	"lifeboard/internal/models"

	"github.com/google/uuid"
)

// uploadURLPrefix is the public URL prefix under which stored files are served.
const uploadURLPrefix = "/uploads/"

// DefaultAllowedUploadTypes is the production MIME allow-list for uploads.
var DefaultAllowedUploadTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"video/mp4",
	"video/webm",
	"video/ogg",
}

// srcOrHrefRe matches src= and href= attribute values in stored HTML.
// Deliberately tolerant: the content was sanitized on the way in, so a plain
// attribute scan is enough to find every embedded upload reference.
var srcOrHrefRe = regexp.MustCompile(`(?i)(?:src|href)=["']([^"']+)["']`)

// extensionRe accepts only simple alphanumeric extensions so a crafted
// original filename can never smuggle path syntax onto disk.
var extensionRe = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,10}$`)

// Upload describes a stored media file.
type Upload struct {
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

// StoreUploadInput is the raw file payload to store.
type StoreUploadInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// UploadService validates and stores media files under a date-partitioned
// root and garbage-collects files orphaned by content edits and deletions.
type UploadService struct {
	root    string
	allowed map[string]struct{}
	now     func() time.Time
}

// NewUploadService creates an upload service rooted at uploadDir. The MIME
// allow-list and clock are injected so tests can substitute both.
func NewUploadService(uploadDir string, allowedTypes []string, now func() time.Time) (*UploadService, error) {
	root, err := filepath.Abs(uploadDir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedUploadTypes
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}

	return &UploadService{
		root:    root,
		allowed: allowed,
		now:     now,
	}, nil
}

// Store validates and writes the file to <root>/<YYYYMMDD>/<token><ext>.
// The original filename is never trusted on disk; only its extension survives,
// and only when it is a plain alphanumeric one.
func (s *UploadService) Store(in StoreUploadInput) (*Upload, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("Empty file")
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if _, ok := s.allowed[contentType]; !ok {
		return nil, models.NewValidationError("File type not allowed")
	}

	dateDir := s.now().Format("20060102")
	dir := filepath.Join(s.root, dateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, models.NewInternalError(err)
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if !extensionRe.MatchString(ext) {
		ext = ""
	}

	stored := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	if err := os.WriteFile(filepath.Join(dir, stored), in.Content, 0o644); err != nil {
		return nil, models.NewInternalError(err)
	}

	middleware.UploadedFiles.WithLabelValues(contentType).Inc()

	return &Upload{
		URL:          uploadURLPrefix + dateDir + "/" + stored,
		OriginalName: in.Filename,
		Size:         int64(len(in.Content)),
		ContentType:  contentType,
	}, nil
}

// Root returns the absolute upload root directory.
func (s *UploadService) Root() string {
	return s.root
}

// ExtractPaths scans HTML for src=/href= references and resolves them to
// on-disk paths under the upload root. References outside the root, absolute
// URLs included, are resolved to their path component first; anything that
// would escape the root after normalization is silently dropped.
func (s *UploadService) ExtractPaths(html string) map[string]struct{} {
	paths := make(map[string]struct{})
	if strings.TrimSpace(html) == "" {
		return paths
	}
	for _, match := range srcOrHrefRe.FindAllStringSubmatch(html, -1) {
		if p, ok := s.mapURLToPath(match[1]); ok {
			paths[p] = struct{}{}
		}
	}
	return paths
}

func (s *UploadService) mapURLToPath(ref string) (string, bool) {
	path := ref
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		parsed, err := url.Parse(ref)
		if err != nil {
			return "", false
		}
		path = parsed.Path
	}
	if !strings.HasPrefix(path, uploadURLPrefix) {
		return "", false
	}

	rel := strings.TrimPrefix(path, uploadURLPrefix)
	full := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(rel)))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", false
	}
	if full == s.root {
		return "", false
	}
	return full, true
}

// CleanupOrphans deletes files referenced by oldHTML but no longer referenced
// by newHTML. Best-effort: the caller's transaction has already committed, so
// filesystem failures are logged and swallowed.
func (s *UploadService) CleanupOrphans(oldHTML, newHTML string) {
	orphans := s.ExtractPaths(oldHTML)
	for kept := range s.ExtractPaths(newHTML) {
		delete(orphans, kept)
	}
	for p := range orphans {
		s.safeRemove(p)
	}
}

// RemoveAll deletes every upload referenced by the given HTML. Used when the
// owning content is deleted.
func (s *UploadService) RemoveAll(html string) {
	for p := range s.ExtractPaths(html) {
		s.safeRemove(p)
	}
}

func (s *UploadService) safeRemove(path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		middleware.OrphanFilesDeleted.Inc()
	case errors.Is(err, fs.ErrNotExist):
		// already gone
	default:
		middleware.Logger.Warn("upload cleanup failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
