package ml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const DefaultBundlePrefix = "airbnb"

// FindBundle returns the path of the first *.json file in dir whose name starts with prefix.
func FindBundle(dir, prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultBundlePrefix
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: directory %s does not exist", ErrModelNotFound, dir)
		}
		return "", err
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".json") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", fmt.Errorf("%w: no %s*.json in %s", ErrModelNotFound, prefix, dir)
}

// LoadBundle locates and loads the bundle in dir.
func LoadBundle(dir, prefix string) (*Bundle, error) {
	path, err := FindBundle(dir, prefix)
	if err != nil {
		return nil, err
	}
	return LoadBundleFile(path)
}

func LoadBundleFile(path string) (*Bundle, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	bundle, err := DecodeBundle(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return bundle, nil
}
