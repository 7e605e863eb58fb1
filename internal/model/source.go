// Package model defines the data structures shared by the runic packages.
package model

import (
	"os"
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// Specifier is the canonical identifier of a program entry point. File-backed
// entries use the file URL form (file:///abs/path); synthetic entries (stdin,
// eval) use the same form with a reserved basename so they sort next to real
// files in diagnostics.
type Specifier string

// ContentKind declares how the body of a source should be treated by
// type-aware tooling downstream.
type ContentKind string

const (
	// ContentScript marks a full typed script (stdin runs use this so the
	// source gets the normal tooling treatment).
	ContentScript ContentKind = "script"

	// ContentPlain marks unknown/plain text (eval input).
	ContentPlain ContentKind = "plain"
)

// VirtualFile is an in-memory stand-in for a source file. Once inserted into
// the source cache it must resolve by specifier lookup exactly as a real file
// would.
type VirtualFile struct {
	Local     Path
	Specifier Specifier
	Kind      ContentKind
	Source    string
	TypeHint  string            // optional companion type definitions
	Headers   map[string]string // optional transport metadata
}

const fileScheme = "file://"

// FileSpecifier builds the canonical specifier for a path, absolutizing it
// against the working directory.
func FileSpecifier(path string) (Specifier, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return Specifier(fileScheme + filepath.ToSlash(abs)), nil
}

// SyntheticSpecifier builds a specifier for a source that never existed on
// disk, anchored to the working directory so relative imports still resolve.
func SyntheticSpecifier(basename string) Specifier {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return Specifier(fileScheme + filepath.ToSlash(filepath.Join(cwd, basename)))
}

// FilePath converts the specifier back to a local path. Non file-backed
// specifiers are returned unchanged.
func (s Specifier) FilePath() Path {
	trimmed := strings.TrimPrefix(string(s), fileScheme)
	return Path(filepath.FromSlash(trimmed))
}

// IsFile reports whether the specifier uses the file URL form.
func (s Specifier) IsFile() bool {
	return strings.HasPrefix(string(s), fileScheme)
}
