package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScriptExt is appended to script names given without an extension.
const ScriptExt = ".tengo"

// DirScripts returns a loader reading action scripts from dir.
// Names are relative to dir and may not escape it.
func DirScripts(dir string) func(name string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		path, err := scriptPath(dir, name)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading script %s: %w", name, err)
		}
		return data, nil
	}
}

func scriptPath(dir, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimSpace(name))
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("script name %q is not local to the script dir", name)
	}
	if filepath.Ext(clean) == "" {
		clean += ScriptExt
	}
	return filepath.Join(dir, clean), nil
}

func isCatalogFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ScriptExt
}
