package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Target describes what a run should process. Exactly one of File or Folder
// must be set.
type Target struct {
	File      string
	Folder    string
	Recursive bool

	// Exclude is a directory that is never descended into, typically the
	// output folder when it lives inside the source tree.
	Exclude string
}

// jpegExts are the extensions picked up from a folder.
var jpegExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// IsJPEGName reports whether the file name carries a JPEG extension.
func IsJPEGName(name string) bool {
	return jpegExts[strings.ToLower(filepath.Ext(name))]
}

// Resolve returns the ordered list of files to process for a target.
func Resolve(target Target) ([]string, error) {
	switch {
	case target.File != "" && target.Folder != "":
		return nil, errors.New("a file and a folder target are mutually exclusive")
	case target.File != "":
		info, err := os.Stat(target.File)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory, use a folder target", target.File)
		}
		return []string{target.File}, nil
	case target.Folder != "":
		return walkFolder(target)
	default:
		return nil, errors.New("no file or folder to process")
	}
}

func walkFolder(target Target) ([]string, error) {
	info, err := os.Stat(target.Folder)
	if err != nil {
		return nil, fmt.Errorf("failed to stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", target.Folder)
	}

	exclude := ""
	if target.Exclude != "" {
		if abs, err := filepath.Abs(target.Exclude); err == nil {
			exclude = abs
		}
	}

	var files []string
	// WalkDir visits entries in lexical order.
	err = filepath.WalkDir(target.Folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == target.Folder {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !target.Recursive {
				return filepath.SkipDir
			}
			if exclude != "" {
				if abs, err := filepath.Abs(path); err == nil && abs == exclude {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if d.Type().IsRegular() && IsJPEGName(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", target.Folder, err)
	}

	return files, nil
}
