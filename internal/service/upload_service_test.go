package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lifeboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uploadNow = time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

func newTestUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	root := t.TempDir()
	svc, err := NewUploadService(root, nil, func() time.Time { return uploadNow })
	require.NoError(t, err)
	return svc, root
}

func storeFile(t *testing.T, svc *UploadService, name string) *Upload {
	t.Helper()
	up, err := svc.Store(StoreUploadInput{
		Filename:    name,
		ContentType: "image/png",
		Content:     []byte("png-bytes"),
	})
	require.NoError(t, err)
	return up
}

func diskPath(root string, up *Upload) string {
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(up.URL, "/uploads/")))
}

func TestUploadStore_WritesDatePartitionedFile(t *testing.T) {
	svc, root := newTestUploadService(t)

	up := storeFile(t, svc, "photo.PNG")
	assert.True(t, strings.HasPrefix(up.URL, "/uploads/20240305/"), "URL %q", up.URL)
	assert.True(t, strings.HasSuffix(up.URL, ".png"), "extension lowered, URL %q", up.URL)
	assert.Equal(t, "photo.PNG", up.OriginalName)
	assert.Equal(t, int64(9), up.Size)

	data, err := os.ReadFile(diskPath(root, up))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestUploadStore_RejectsEmptyAndDisallowedTypes(t *testing.T) {
	svc, _ := newTestUploadService(t)

	_, err := svc.Store(StoreUploadInput{Filename: "a.png", ContentType: "image/png"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	_, err = svc.Store(StoreUploadInput{
		Filename:    "run.exe",
		ContentType: "application/x-msdownload",
		Content:     []byte("MZ"),
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUploadStore_NeverTrustsFilename(t *testing.T) {
	svc, root := newTestUploadService(t)

	up := storeFile(t, svc, "../../etc/passwd")
	assert.NotContains(t, up.URL, "..")

	// File landed inside the date dir, nowhere else
	full := diskPath(root, up)
	rel, err := filepath.Rel(root, full)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."))
}

func TestExtractPaths_FindsUploadReferencesOnly(t *testing.T) {
	svc, root := newTestUploadService(t)

	html := `<p>pics</p>
		<img src="/uploads/20240305/a.png">
		<a href='/uploads/20240305/b.mp4'>clip</a>
		<img SRC="https://cdn.example.com/uploads/20240305/c.gif">
		<img src="https://elsewhere.example.com/other/d.png">
		<img src="/static/logo.png">`

	paths := svc.ExtractPaths(html)
	assert.Len(t, paths, 3)
	for _, name := range []string{"a.png", "b.mp4", "c.gif"} {
		_, ok := paths[filepath.Join(root, "20240305", name)]
		assert.True(t, ok, "expected %s in extracted set", name)
	}
}

func TestExtractPaths_RejectsTraversal(t *testing.T) {
	svc, _ := newTestUploadService(t)

	paths := svc.ExtractPaths(`<img src="/uploads/../../../etc/passwd">` +
		`<img src="/uploads/20240305/../../outside.png">`)
	assert.Empty(t, paths)
}

func TestCleanupOrphans_DeletesOldMinusNew(t *testing.T) {
	svc, root := newTestUploadService(t)

	kept := storeFile(t, svc, "kept.png")
	orphan := storeFile(t, svc, "orphan.png")

	oldHTML := `<img src="` + kept.URL + `"><img src="` + orphan.URL + `">`
	newHTML := `<img src="` + kept.URL + `">`

	svc.CleanupOrphans(oldHTML, newHTML)

	_, err := os.Stat(diskPath(root, kept))
	assert.NoError(t, err, "still-referenced file must survive")
	_, err = os.Stat(diskPath(root, orphan))
	assert.True(t, os.IsNotExist(err), "orphan must be deleted")
}

func TestCleanupOrphans_MissingFileIsNotAnError(t *testing.T) {
	svc, _ := newTestUploadService(t)

	// Nothing on disk; must not panic or error
	svc.CleanupOrphans(`<img src="/uploads/20240305/ghost.png">`, "")
}

func TestRemoveAll_DeletesEveryReference(t *testing.T) {
	svc, root := newTestUploadService(t)

	a := storeFile(t, svc, "a.png")
	b := storeFile(t, svc, "b.png")

	svc.RemoveAll(`<img src="` + a.URL + `"><a href="` + b.URL + `">dl</a>`)

	_, err := os.Stat(diskPath(root, a))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(diskPath(root, b))
	assert.True(t, os.IsNotExist(err))
}

func TestCleanup_TraversalNeverEscapesRoot(t *testing.T) {
	svc, root := newTestUploadService(t)

	outside := filepath.Join(filepath.Dir(root), "victim.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	rel, err := filepath.Rel(root, outside)
	require.NoError(t, err)
	svc.RemoveAll(`<img src="/uploads/` + filepath.ToSlash(rel) + `">`)

	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}
