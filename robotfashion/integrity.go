package robotfashion

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Folder declares one expected subfolder of the dataset root together with
// the digest of its entry names.
type Folder struct {
	Name   string
	SHA256 string
}

// FolderFingerprint digests the names of a folder's direct entries, sorted
// and concatenated without separator. It is a structural signal only; file
// contents never enter the hash. Sorting makes the digest independent of the
// OS listing order.
func FolderFingerprint(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		io.WriteString(h, name)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyStructure reports whether every declared folder exists under root
// with a matching fingerprint. An empty declaration list trivially passes.
func VerifyStructure(root string, folders []Folder) bool {
	for _, folder := range folders {
		fingerprint, err := FolderFingerprint(filepath.Join(root, folder.Name))
		if err != nil {
			log.WithFields(log.Fields{"root": root, "folder": folder.Name}).
				Debug("Folder missing or unreadable")
			return false
		}

		if !strings.EqualFold(fingerprint, folder.SHA256) {
			log.WithFields(log.Fields{"folder": folder.Name, "want": folder.SHA256, "got": fingerprint}).
				Debug("Folder fingerprint mismatch")
			return false
		}
	}
	return true
}
