// Package script finds MCCompiled source files and decodes them to UTF-8.
package script

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/zurustar/mccompiled/pkg/compiler/preprocessor"
	"github.com/zurustar/mccompiled/pkg/fileutil"
)

// Extension is the source file extension, matched without regard to case.
const Extension = ".mcc"

// Script はデコード済みのソースファイル
type Script struct {
	FileName string // base name, e.g. "main.mcc"
	Path     string // "/" separated, relative to the loader's root
	Content  string // UTF-8
	Size     int64  // size on disk in bytes

	// FS is the file system the script was loaded from, for resolving
	// $include. Nil for in-memory scripts.
	FS fileutil.FileSystem
}

// Name is the file name without its extension.
func (s Script) Name() string {
	return strings.TrimSuffix(s.FileName, path.Ext(s.FileName))
}

// Loader はソースファイルの検出と読み込みを行う
type Loader struct {
	fs fileutil.FileSystem
}

// NewLoader creates a loader over the directory root.
func NewLoader(root string) *Loader {
	return &Loader{fs: fileutil.NewRealFS(root)}
}

// NewLoaderFS creates a loader over an existing file system.
func NewLoaderFS(fsys fileutil.FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// LoadAllScripts loads every source file below the root, sorted by path.
// Files that another file pulls in with $include are left out.
func (l *Loader) LoadAllScripts() ([]Script, error) {
	paths, err := l.findScriptFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find script files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", Extension, l.fs.BasePath())
	}

	loaded := make([]Script, 0, len(paths))
	included := make(map[string]bool)
	for _, p := range paths {
		s, err := l.LoadScript(p)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, *s)
		for _, inc := range preprocessor.Includes(s.Path, s.Content) {
			included[fileutil.Fold(inc)] = true
		}
	}

	// $include で取り込まれるファイルは単独ではコンパイルしない
	scripts := loaded[:0]
	for _, s := range loaded {
		if !included[fileutil.Fold(s.Path)] {
			scripts = append(scripts, s)
		}
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("every %s file in %s is included by another", Extension, l.fs.BasePath())
	}
	return scripts, nil
}

// findScriptFiles は拡張子を大文字小文字を無視して比較する
func (l *Loader) findScriptFiles() ([]string, error) {
	var paths []string
	err := fileutil.WalkDir(l.fs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(path.Ext(p), Extension) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadScript reads and decodes one file.
func (l *Loader) LoadScript(name string) (*Script, error) {
	data, err := l.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", name, err)
	}
	content, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode script %s: %w", name, err)
	}
	return &Script{
		FileName: path.Base(name),
		Path:     name,
		Content:  content,
		Size:     int64(len(data)),
		FS:       l.fs,
	}, nil
}

// Decode converts source bytes to UTF-8. A byte order mark selects UTF-8 or
// UTF-16 and is dropped. Without one, valid UTF-8 is kept as is and
// anything else is read as Shift-JIS.
func Decode(data []byte) (string, error) {
	var decoder transform.Transformer
	switch {
	case hasBOM(data):
		decoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	case utf8.Valid(data):
		return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
	default:
		decoder = japanese.ShiftJIS.NewDecoder()
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(out), "\r\n", "\n"), nil
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
