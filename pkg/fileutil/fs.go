package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem は実ファイルシステムと fs.FS を統一的に扱うインターフェース。
// 名前は basePath からの "/" 区切りの相対パスで、大文字小文字は無視される。
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	// FindFile returns the actual path of filename inside dir.
	FindFile(dir, filename string) (string, error)
	BasePath() string
}

// RealFS は実ファイルシステムへのアクセスを提供する
type RealFS struct {
	basePath string
}

// NewRealFS creates a FileSystem rooted at basePath. An empty basePath is
// the working directory.
func NewRealFS(basePath string) *RealFS {
	return &RealFS{basePath: basePath}
}

func (r *RealFS) ReadFile(name string) ([]byte, error) {
	actual, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(actual)
}

func (r *RealFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(r.join(name))
}

func (r *RealFS) FindFile(dir, filename string) (string, error) {
	if filepath.IsAbs(dir) {
		return FindFileCaseInsensitive(dir, filename)
	}
	return FindFileCaseInsensitive(r.join(dir), filename)
}

func (r *RealFS) BasePath() string {
	return r.basePath
}

func (r *RealFS) join(name string) string {
	clean := strings.TrimLeft(filepath.FromSlash(name), `/\`)
	if r.basePath == "" {
		if clean == "" {
			return "."
		}
		return clean
	}
	return filepath.Join(r.basePath, clean)
}

// resolve は完全一致を優先し、なければ最後の要素だけ大文字小文字を無視して探す
func (r *RealFS) resolve(name string) (string, error) {
	p := r.join(name)
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	return FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
}

// TreeFS adapts an fs.FS, such as an embed.FS or fstest.MapFS.
type TreeFS struct {
	fsys     fs.FS
	basePath string
}

// NewTreeFS creates a FileSystem over fsys rooted at basePath.
func NewTreeFS(fsys fs.FS, basePath string) *TreeFS {
	return &TreeFS{fsys: fsys, basePath: strings.Trim(basePath, "/")}
}

func (t *TreeFS) ReadFile(name string) ([]byte, error) {
	p := t.join(name)
	if data, err := fs.ReadFile(t.fsys, p); err == nil {
		return data, nil
	}
	actual, err := FindFileCaseInsensitiveFS(t.fsys, path.Dir(p), path.Base(p))
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(t.fsys, actual)
}

func (t *TreeFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(t.fsys, t.join(name))
}

func (t *TreeFS) FindFile(dir, filename string) (string, error) {
	return FindFileCaseInsensitiveFS(t.fsys, t.join(dir), filename)
}

func (t *TreeFS) BasePath() string {
	return t.basePath
}

func (t *TreeFS) join(name string) string {
	clean := strings.Trim(strings.ReplaceAll(name, `\`, "/"), "/")
	if clean == "" {
		clean = "."
	}
	if t.basePath == "" {
		return path.Clean(clean)
	}
	return path.Join(t.basePath, clean)
}

// WalkDir walks root like fs.WalkDir. Paths handed to fn are relative to
// the file system's base path and "/" separated.
func WalkDir(fsys FileSystem, root string, fn fs.WalkDirFunc) error {
	switch f := fsys.(type) {
	case *TreeFS:
		base := f.basePath
		return fs.WalkDir(f.fsys, f.join(root), func(p string, d fs.DirEntry, err error) error {
			return fn(relative(base, p), d, err)
		})
	case *RealFS:
		base := filepath.ToSlash(f.join("."))
		return filepath.WalkDir(f.join(root), func(p string, d fs.DirEntry, err error) error {
			return fn(relative(base, filepath.ToSlash(p)), d, err)
		})
	}
	return fmt.Errorf("fileutil: cannot walk %T", fsys)
}

func relative(base, p string) string {
	if base == "" || base == "." {
		return p
	}
	if p == base {
		return "."
	}
	return strings.TrimPrefix(p, base+"/")
}
