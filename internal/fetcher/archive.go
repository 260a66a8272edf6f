package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
)

// archiveNameLen is how many hex digits of the HTML hash name an archive file.
const archiveNameLen = 16

// Archive stores raw page HTML on disk, one file per distinct document.
type Archive struct {
	dir string
}

// NewArchive creates the archive directory if needed.
func NewArchive(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Save writes html under a name derived from its hash and returns the path.
// Identical documents share a file; an existing file is left as is.
func (a *Archive) Save(html []byte) (string, error) {
	path := filepath.Join(a.dir, hashHex(html)[:archiveNameLen]+".html")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// Temp file in the same directory so the rename is atomic.
	tmpFile, err := os.CreateTemp(a.dir, "page_tmp_")
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(html); err != nil {
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return "", err
	}
	return path, nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}
