package getter

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source is a fleet config or template made available on the local filesystem.
type Source struct {
	// Path is the local file to read.
	Path string
	// Fetched is true when Path is a temporary copy made by go-getter.
	Fetched bool

	tmpDir string
}

// Close removes the temporary copy of a remote source.
func (s *Source) Close() error {
	if s.tmpDir == "" {
		return nil
	}

	return os.RemoveAll(s.tmpDir)
}

// IsRemote reports whether src uses go-getter URL syntax rather than a plain path.
func IsRemote(src string) bool {
	return strings.Contains(src, "::") ||
		strings.Contains(src, "://") ||
		strings.HasPrefix(src, "git@") ||
		strings.HasPrefix(src, "github.com/") ||
		strings.HasPrefix(src, "gitlab.com/") ||
		strings.HasPrefix(src, "bitbucket.org/")
}

// FileName returns the file name a remote source should be stored under.
// The extension is preserved so the config notation can be detected.
//
//	FileName("github.com/acme/ci//fleet/fleet.hcl?ref=v1") → "fleet.hcl"
func FileName(src string) string {
	if i := strings.Index(src, "::"); i >= 0 {
		src = src[i+2:]
	}

	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}

	base := path.Base(strings.TrimRight(src, "/"))
	if base == "." || base == "/" || base == "" {
		return "source"
	}

	return base
}

// Open makes src available locally. Plain paths are used as is unless a
// checksum is requested; go-getter URLs are fetched into a temporary directory
// that Close removes. Relative sources resolve against opts.Pwd, or the
// working directory when it is empty.
func (g *Getter) Open(ctx context.Context, src string, opts FetchOpts) (*Source, error) {
	if !IsRemote(src) && opts.Checksum == "" {
		if _, err := os.Stat(src); err != nil {
			return nil, fmt.Errorf("opening %s: %w", src, err)
		}

		return &Source{Path: src}, nil
	}

	if opts.Pwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		opts.Pwd = wd
	}

	dir, err := os.MkdirTemp("", "fleetgen-src-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}

	dest := filepath.Join(dir, FileName(src))
	if err := g.FetchFile(ctx, src, dest, opts); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			g.logger.Warn("failed to clean up temp directory", "dir", dir, "error", rmErr)
		}

		return nil, err
	}

	return &Source{Path: dest, Fetched: true, tmpDir: dir}, nil
}
