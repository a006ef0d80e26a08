package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/nurefexc/rss-bridge-ntfy/internal/domain"
)

// SourceFile is one topic file: an ordered list of feed descriptors whose
// base name acts as the notification routing key.
type SourceFile struct {
	Topic   string
	Path    string
	Sources []domain.FeedSource
}

type sourceDescriptor struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
	Icon     string `json:"icon"`
}

// ListSourceFiles returns the topic files in dir, lexicographically ordered
// so each cycle visits topics deterministically.
func ListSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read feeds dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

// LoadSourceFile parses one topic file. The topic is the file's base name
// without extension.
func LoadSourceFile(path string) (SourceFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("read source file %s: %w", path, err)
	}

	var descriptors []sourceDescriptor
	if err := json.Unmarshal(raw, &descriptors); err != nil {
		return SourceFile{}, fmt.Errorf("parse source file %s: %w", path, err)
	}

	base := filepath.Base(path)
	topic := strings.TrimSuffix(base, filepath.Ext(base))

	return SourceFile{
		Topic: topic,
		Path:  path,
		Sources: lo.Map(descriptors, func(d sourceDescriptor, _ int) domain.FeedSource {
			return domain.FeedSource{
				Name:     d.Name,
				URL:      d.URL,
				Priority: d.Priority,
				Icon:     d.Icon,
			}
		}),
	}, nil
}
