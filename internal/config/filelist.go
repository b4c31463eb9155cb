package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// EntryKind classifies one line of a .f file list
type EntryKind int

const (
	EntryFile    EntryKind = iota // path to an existing file
	EntryIncDir                   // +incdir+ directive
	EntryMissing                  // anything else, usually a path that does not exist
)

// FileListEntry is one non-comment line of a file list
type FileListEntry struct {
	Raw  string // line as written, without the trailing newline
	Path string // trimmed line with environment variables expanded
	Kind EntryKind
}

// FileList is a parsed .f file
type FileList struct {
	Path    string
	Entries []FileListEntry
}

// Files returns the entries that name existing files, in order
func (fl FileList) Files() []string {
	var out []string
	for _, e := range fl.Entries {
		if e.Kind == EntryFile {
			out = append(out, e.Path)
		}
	}
	return out
}

// Missing returns entries that are neither files nor include directives
func (fl FileList) Missing() []string {
	var out []string
	for _, e := range fl.Entries {
		if e.Kind == EntryMissing {
			out = append(out, e.Path)
		}
	}
	return out
}

// ReadFileList parses a file list. Lines starting with # are comments,
// $VAR and ${VAR} are expanded from the environment.
func ReadFileList(path string) (FileList, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileList{}, fmt.Errorf("reading file list: %w", err)
	}
	defer f.Close()

	fl := FileList{Path: path}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "$") {
			line = os.Expand(line, os.Getenv)
		}

		entry := FileListEntry{Raw: raw, Path: line, Kind: EntryMissing}
		if info, err := os.Stat(line); err == nil && !info.IsDir() {
			entry.Kind = EntryFile
		} else if strings.HasPrefix(line, "+incdir+") {
			entry.Kind = EntryIncDir
		}
		fl.Entries = append(fl.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return FileList{}, fmt.Errorf("reading file list: %w", err)
	}
	return fl, nil
}

// WriteMinimizedFileList writes the entries of fl that are include
// directives or files not in unused. Entries keep their original text.
func WriteMinimizedFileList(path string, fl FileList, unused map[string]bool) error {
	var b strings.Builder
	for _, e := range fl.Entries {
		switch e.Kind {
		case EntryFile:
			if unused[e.Path] {
				continue
			}
		case EntryIncDir:
		default:
			continue
		}
		b.WriteString(e.Raw)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing minimized file list: %w", err)
	}
	return nil
}
