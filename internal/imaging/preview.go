package imaging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"wellmatch/internal/app"
)

var _ app.Preview = (*TempPreview)(nil)

// TempPreview is a cropped image held in a temporary file until it is
// uploaded.
type TempPreview struct {
	name string
	path string
}

// NewPreview crops the image at srcPath into a temporary JPEG in dir (the
// system temp dir when empty).
func NewPreview(dir, srcPath string, rect *Rect) (*TempPreview, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, "wellmatch-preview-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("create preview: %w", err)
	}
	if err := Crop(tmp, src, rect); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return nil, fmt.Errorf("close preview: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return &TempPreview{name: base + ".jpg", path: tmp.Name()}, nil
}

// Name is the upload file name.
func (p *TempPreview) Name() string { return p.name }

// Open opens the cropped image.
func (p *TempPreview) Open() (io.ReadCloser, error) { return os.Open(p.path) }

// URL is a file URL to the local preview.
func (p *TempPreview) URL() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p.path)}).String()
}

// Release deletes the temporary file. Releasing twice is fine.
func (p *TempPreview) Release() error {
	err := os.Remove(p.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
