package robotfashion

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildArchive assembles a zip holding the full split tree, with one
// image/annotation pair in the train split.
func buildArchive(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, split := range []string{"train", "validation", "test"} {
		for _, sub := range []string{"images", "annotations"} {
			_, err := w.Create(split + "/" + sub + "/")
			require.NoError(t, err)
		}
	}

	img, err := w.Create("train/images/a.jpg")
	require.NoError(t, err)
	_, err = img.Write([]byte("not really a jpeg"))
	require.NoError(t, err)

	anno, err := w.Create("train/annotations/a.xml")
	require.NoError(t, err)
	_, err = anno.Write([]byte(validAnnotation))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

// serveArchive exposes the archive over HTTP and returns its descriptor plus
// a request counter.
func serveArchive(t *testing.T, archive []byte) (DownloadLink, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write(archive)
	}))
	t.Cleanup(server.Close)

	digest := sha256.Sum256(archive)
	link := DownloadLink{
		URL:    server.URL,
		Name:   "robotfashion_dataset.zip",
		SHA256: hex.EncodeToString(digest[:]),
		Bytes:  int64(len(archive)),
	}
	return link, &requests
}

func TestEnsureDownloadsAndExtracts(t *testing.T) {
	archive := buildArchive(t)
	link, requests := serveArchive(t, archive)
	root := filepath.Join(t.TempDir(), DataFolderName())

	require.NoError(t, Ensure(root, []DownloadLink{link}, DefaultFolders()))
	require.True(t, VerifyStructure(root, DefaultFolders()))
	require.EqualValues(t, 1, requests.Load())

	content, err := os.ReadFile(filepath.Join(root, "train", "annotations", "a.xml"))
	require.NoError(t, err)
	require.Equal(t, validAnnotation, string(content))
}

func TestEnsureIsIdempotent(t *testing.T) {
	archive := buildArchive(t)
	link, requests := serveArchive(t, archive)
	root := filepath.Join(t.TempDir(), DataFolderName())

	require.NoError(t, Ensure(root, []DownloadLink{link}, DefaultFolders()))
	require.NoError(t, Ensure(root, []DownloadLink{link}, DefaultFolders()))
	require.EqualValues(t, 1, requests.Load())
}

func TestEnsureNoopWhenAlreadyValid(t *testing.T) {
	archive := buildArchive(t)
	link, requests := serveArchive(t, archive)

	root := filepath.Join(t.TempDir(), DataFolderName())
	for _, name := range []string{"train", "validation", "test"} {
		makeSplitFolder(t, filepath.Join(root, name))
	}

	require.NoError(t, Ensure(root, []DownloadLink{link}, DefaultFolders()))
	require.EqualValues(t, 0, requests.Load())
}

func TestEnsureDigestMismatch(t *testing.T) {
	archive := buildArchive(t)
	link, _ := serveArchive(t, archive)
	link.SHA256 = "5a66924dbe44eed9bc0cdf52a206470db2fd9421a5745ab17b18588952c14ba4"
	root := filepath.Join(t.TempDir(), DataFolderName())

	err := Ensure(root, []DownloadLink{link}, DefaultFolders())
	require.ErrorIs(t, err, ErrProvisioning)

	// The rejected archive must not survive to poison the next attempt.
	_, statErr := os.Stat(filepath.Join(root, link.Name))
	require.True(t, os.IsNotExist(statErr))
}

func TestEnsureLengthMismatch(t *testing.T) {
	archive := buildArchive(t)
	link, _ := serveArchive(t, archive)
	link.Bytes = int64(len(archive)) + 1
	root := filepath.Join(t.TempDir(), DataFolderName())

	// Every download lands one byte short of the declared length, so each
	// attempt is discarded as a partial file.
	err := Ensure(root, []DownloadLink{link}, DefaultFolders())
	require.ErrorIs(t, err, ErrProvisioning)
}

func TestEnsureRedownloadsPartialFile(t *testing.T) {
	archive := buildArchive(t)
	link, requests := serveArchive(t, archive)

	root := filepath.Join(t.TempDir(), DataFolderName())
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, link.Name), archive[:len(archive)/2], 0o644))

	require.NoError(t, Ensure(root, []DownloadLink{link}, DefaultFolders()))
	require.EqualValues(t, 1, requests.Load())
	require.True(t, VerifyStructure(root, DefaultFolders()))
}

func TestEnsureStructureStillInvalidAfterExtraction(t *testing.T) {
	archive := buildArchive(t)
	link, _ := serveArchive(t, archive)
	root := filepath.Join(t.TempDir(), DataFolderName())

	folders := append(DefaultFolders(), Folder{Name: "extra", SHA256: splitFingerprint})

	err := Ensure(root, []DownloadLink{link}, folders)
	require.ErrorIs(t, err, ErrProvisioning)
}

func TestUnzipRejectsEscapingEntries(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("../escape.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(archivePath, buf.Bytes(), 0o644))

	require.Error(t, unzip(archivePath, filepath.Join(dir, "out")))
}
