package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// VerilogExtensions are the file suffixes picked up by source globbing
var VerilogExtensions = []string{".v", ".sv", ".vh", ".svh"}

// IsVerilogFile reports whether path has a Verilog extension
func IsVerilogFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range VerilogExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ResolveSources expands the configured glob patterns into a sorted file
// list. Ingestion order matters for `define visibility, so the result is
// deterministic.
func (c *Config) ResolveSources(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)
	for _, pattern := range c.Sources.Files {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			// Silently skip invalid patterns
			continue
		}

		for _, match := range matches {
			if IsVerilogFile(match) {
				fileSet[match] = true
			}
		}
	}

	for _, pattern := range c.Sources.Exclude {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			continue
		}

		for _, match := range matches {
			delete(fileSet, match)
		}
	}

	var result []string
	for f := range fileSet {
		if !c.ShouldIgnoreFile(f) {
			result = append(result, f)
		}
	}
	sort.Strings(result)

	return result, nil
}

// expandGlob expands a glob pattern, handling ** for recursive matching
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}

	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}

		if info.IsDir() {
			return nil
		}

		if suffix == "" {
			results = append(results, path)
			return nil
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}

		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}

		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **)
func matchSuffix(path, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	// No directory component: match against the file name
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}

	if len(path) > len(pattern) {
		suffix := path[len(path)-len(pattern):]
		matched, _ = filepath.Match(pattern, suffix)
		return matched
	}

	return false
}
