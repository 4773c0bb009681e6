package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// Fetcher implements ports.FragmentFetcher by reading files under a base directory.
// References are slash-separated and may not escape the base directory.
type Fetcher struct {
	BaseDir string
}

// NewFetcher creates a fetcher rooted at baseDir ("." when empty).
func NewFetcher(baseDir string) *Fetcher {
	if baseDir == "" {
		baseDir = "."
	}
	return &Fetcher{BaseDir: baseDir}
}

// Fetch reads the fragment named by ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := f.resolve(ref)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrFragmentFetch, ref, err)
	}
	return string(data), nil
}

func (f *Fetcher) resolve(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	if ref == "" || clean == "." || filepath.IsAbs(clean) ||
		clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid fragment path %q", domain.ErrFragmentFetch, ref)
	}
	return filepath.Join(f.BaseDir, clean), nil
}
