package fs

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"docblock/internal/port"
)

// Walker lists the source files under a root that match the include globs
// and none of the exclude globs. Globs are matched against slash-separated
// paths relative to the root.
type Walker struct {
	fs          afero.Fs
	includes    []string
	excludes    []string
	maxFileSize int64
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithFs replaces the OS filesystem.
func WithFs(fs afero.Fs) WalkerOption {
	return func(w *Walker) {
		w.fs = fs
	}
}

// WithMaxFileSize skips files larger than n bytes. Zero disables the limit.
func WithMaxFileSize(n int64) WalkerOption {
	return func(w *Walker) {
		w.maxFileSize = n
	}
}

func NewWalker(includes, excludes []string, opts ...WalkerOption) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	w := &Walker{
		fs:       afero.NewOsFs(),
		includes: includes,
		excludes: excludes,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	if _, isOS := w.fs.(*afero.OsFs); isOS {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		root = abs
	}

	err := afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.maxFileSize > 0 && info.Size() > w.maxFileSize {
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, port.FileInfo{
				Path:    path,
				ModTime: info.ModTime().Unix(),
				Size:    info.Size(),
			})
		}

		return nil
	})

	return files, err
}

func (w *Walker) shouldInclude(path string) bool {
	return matchAny(w.includes, path)
}

func (w *Walker) shouldExclude(path string) bool {
	return matchAny(w.excludes, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// Reader reads whole files from an afero filesystem.
type Reader struct {
	fs afero.Fs
}

// NewReader returns a reader over fs, or over the OS filesystem when fs is
// nil.
func NewReader(fs afero.Fs) *Reader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Reader{fs: fs}
}

func (r *Reader) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	_ port.FileWalker = (*Walker)(nil)
	_ port.FileReader = (*Reader)(nil)
)
