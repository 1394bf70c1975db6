package source

import (
	"path/filepath"
	"strings"
)

// SourceFile represents one immutable snapshot of the document being edited.
// The session replaces the whole snapshot on every edit-and-resynchronize
// cycle; nothing mutates Content in place.
type SourceFile struct {
	Name    string   // Display name (e.g., "script.ts", "<editor>")
	Path    string   // Full file path (empty for in-editor documents)
	Content string   // The source code content
	lines   []string // Cached split lines (lazy initialization)
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewEditorSource creates a source file for in-editor document text.
func NewEditorSource(content string) *SourceFile {
	return &SourceFile{
		Name:    "<editor>",
		Path:    "",
		Content: content,
	}
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile returns true if this represents an actual file (has a path)
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}

// FromFile creates a SourceFile from a file path and content
func FromFile(filePath, content string) *SourceFile {
	name := filepath.Base(filePath)
	return NewSourceFile(name, filePath, content)
}
