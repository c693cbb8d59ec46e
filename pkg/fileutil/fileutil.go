// Package fileutil provides case-insensitive file access over the real file
// system and over fs.FS trees. Behaviour packs authored on Windows often
// disagree with their references about case, so every lookup folds names.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Fold returns the case-folded form of a file name, usable as a map key.
func Fold(name string) string {
	return folder.String(name)
}

// SameName reports whether two file names are equal under Unicode case folding.
func SameName(a, b string) bool {
	return Fold(a) == Fold(b)
}

// FindFileCaseInsensitive は dir の中から filename に一致するファイルを探し、実際のパスを返す。
//
//	p, err := FindFileCaseInsensitive("bp/entities", "Player.JSON")
//	// finds "bp/entities/player.json"
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if name, ok := match(entries, filename); ok {
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// FindFileCaseInsensitiveFS は fs.FS 上で FindFileCaseInsensitive と同じ検索を行う。
// 返すパスは "/" 区切り。
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if name, ok := match(entries, filename); ok {
		return path.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// match prefers an exact name over a folded one.
func match(entries []fs.DirEntry, filename string) (string, bool) {
	found := ""
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if entry.Name() == filename {
			return filename, true
		}
		if found == "" && SameName(entry.Name(), filename) {
			found = entry.Name()
		}
	}
	return found, found != ""
}
