package robotfashion

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DownloadLink describes one remote archive of a dataset version: where to
// fetch it, what to call it on disk, and the digest and byte length the
// download must match before it is trusted.
type DownloadLink struct {
	URL    string
	Name   string
	SHA256 string
	Bytes  int64
}

// Ensure materializes a valid dataset under root. It is a no-op when the
// declared folders already verify. Otherwise every link is downloaded,
// digest-checked and extracted into root, and the structure is verified
// again. A failure after extraction means the archive no longer matches the
// structure this version expects; it is not retried.
func Ensure(root string, links []DownloadLink, folders []Folder) error {
	if VerifyStructure(root, folders) {
		log.WithFields(log.Fields{"root": root}).Debug("Dataset already valid, nothing to provision")
		return nil
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return errors.Wrapf(ErrProvisioning, "creating %s: %v", root, err)
	}

	for _, link := range links {
		archivePath := filepath.Join(root, link.Name)

		// A size-mismatched file on disk is an interrupted download; treat
		// it as absent and fetch again.
		if !presentWithSize(archivePath, link.Bytes) {
			if err := download(link.URL, archivePath); err != nil {
				return errors.Wrapf(ErrProvisioning, "downloading %s: %v", link.Name, err)
			}
		}

		if err := verifyArchive(archivePath, link); err != nil {
			os.Remove(archivePath)
			return err
		}

		log.WithFields(log.Fields{"archive": link.Name, "root": root}).Info("Extracting archive")
		if err := unzip(archivePath, root); err != nil {
			return errors.Wrapf(ErrProvisioning, "extracting %s: %v", link.Name, err)
		}
	}

	if !VerifyStructure(root, folders) {
		return errors.Wrap(ErrProvisioning, "extracted data does not match the expected folder structure")
	}
	return nil
}

func presentWithSize(path string, size int64) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() == size
}

func download(url, dest string) error {
	client := retryablehttp.NewClient()
	client.Logger = log.StandardLogger()

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %s", resp.Status)
	}

	tmp := dest + "." + uuid.NewString() + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	written, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	log.WithFields(log.Fields{"url": url, "bytes": written}).Info("Download complete")
	return os.Rename(tmp, dest)
}

func verifyArchive(path string, link DownloadLink) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrProvisioning, "opening %s: %v", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return errors.Wrapf(ErrProvisioning, "reading %s: %v", path, err)
	}
	if n != link.Bytes {
		return errors.Wrapf(ErrProvisioning, "archive %s is %d bytes, expected %d", link.Name, n, link.Bytes)
	}

	digest := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(digest, link.SHA256) {
		return errors.Wrapf(ErrProvisioning, "archive %s digest mismatch: got %s, want %s", link.Name, digest, link.SHA256)
	}
	return nil
}

func unzip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	cleanDest := filepath.Clean(dest)
	for _, f := range r.File {
		target := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return errors.Errorf("archive entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}

	_, err = io.Copy(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}
