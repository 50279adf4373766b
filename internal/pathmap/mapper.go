package pathmap

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Mapping errors.
var (
	// ErrMissingHost is returned for URLs without a host component.
	// Relative URLs cannot be placed in the mirror tree.
	ErrMissingHost = errors.New("url has no host component")

	// ErrNoFilename is returned when an asset URL has no filename
	// component to save under.
	ErrNoFilename = errors.New("asset url has no filename component")
)

// Mapper derives local filesystem paths from URLs.
//
// Design decision: The base directory is resolved once at construction
// so that DirectoryFor and LocalFileFor are pure functions of the URL.
// Calling either twice with the same URL always yields identical paths,
// even if the process working directory changes mid-run.
type Mapper struct {
	// baseDir is the root of the mirror tree.
	baseDir string
}

// New creates a Mapper rooted at baseDir. An empty baseDir means the
// current working directory, resolved immediately.
func New(baseDir string) (*Mapper, error) {
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		baseDir = cwd
	}
	return &Mapper{baseDir: baseDir}, nil
}

// BaseDir returns the root of the mirror tree.
func (m *Mapper) BaseDir() string {
	return m.baseDir
}

// DirectoryFor returns the local directory for a URL:
// <base>/<host>/<dirname of the URL path, leading separator stripped>.
// The trailing filename component of the path is dropped; a URL with no
// path maps to <base>/<host>.
func (m *Mapper) DirectoryFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%q: %w", rawURL, ErrMissingHost)
	}

	// path.Dir returns "." for an empty path and "/" for a bare slash;
	// both collapse to nothing after the strip, leaving <base>/<host>.
	dir := strings.TrimPrefix(path.Dir(u.Path), "/")

	return filepath.Join(m.baseDir, u.Host, filepath.FromSlash(dir)), nil
}

// LocalFileFor returns the local file path for an asset URL:
// DirectoryFor(assetURL) joined with the basename of the asset's path.
func (m *Mapper) LocalFileFor(assetURL string) (string, error) {
	dir, err := m.DirectoryFor(assetURL)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(assetURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", assetURL, err)
	}

	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("%q: %w", assetURL, ErrNoFilename)
	}

	return filepath.Join(dir, base), nil
}
