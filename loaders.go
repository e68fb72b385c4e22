package fluency

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileLoader reads FTL sources from disk. Each path is one of:
//   - a .ftl file, whose locale is the name of its parent directory
//   - a directory laid out as <dir>/<locale>/*.ftl
//   - a .json, .yaml/.yml or .toml manifest listing sources per locale
type FileLoader struct {
	paths []string
}

type manifest struct {
	Locales map[string][]manifestEntry `json:"locales" yaml:"locales" toml:"locales"`
}

type manifestEntry struct {
	File     string `json:"file" yaml:"file" toml:"file"`
	Text     string `json:"text" yaml:"text" toml:"text"`
	Override bool   `json:"override" yaml:"override" toml:"override"`
}

var _ Loader = &FileLoader{}

func NewFileLoader(paths ...string) *FileLoader {
	return &FileLoader{paths: append([]string(nil), paths...)}
}

func (l *FileLoader) Load() (Sources, error) {
	if l == nil || len(l.paths) == 0 {
		return nil, errors.New("fluency: no loader paths configured")
	}

	sources := make(Sources)
	for _, path := range l.paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("fluency: stat %s: %w", path, err)
		}

		var loaded Sources
		switch {
		case info.IsDir():
			loaded, err = loadDirectory(path)
		case strings.EqualFold(filepath.Ext(path), ".ftl"):
			loaded, err = loadFTLFile(path)
		default:
			loaded, err = loadManifest(path)
		}
		if err != nil {
			return nil, err
		}
		mergeSources(sources, loaded)
	}

	return sources, nil
}

func loadFTLFile(path string) (Sources, error) {
	locale := normalizeLocale(filepath.Base(filepath.Dir(path)))
	if _, err := parseLocale(locale); err != nil {
		return nil, fmt.Errorf("fluency: %s: cannot infer locale from directory: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fluency: read %s: %w", path, err)
	}
	return Sources{locale: {{Name: path, Text: string(data)}}}, nil
}

func loadDirectory(root string) (Sources, error) {
	sources := make(Sources)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".ftl") {
			return nil
		}
		loaded, err := loadFTLFile(path)
		if err != nil {
			return err
		}
		mergeSources(sources, loaded)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fluency: walk %s: %w", root, err)
	}
	return sources, nil
}

func loadManifest(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fluency: read %s: %w", path, err)
	}

	m, err := decodeManifest(path, data)
	if err != nil {
		return nil, fmt.Errorf("fluency: decode %s: %w", path, err)
	}

	base := filepath.Dir(path)
	sources := make(Sources, len(m.Locales))
	for locale, entries := range m.Locales {
		if locale == "" {
			return nil, fmt.Errorf("fluency: empty locale in %s", path)
		}
		locale = normalizeLocale(locale)

		for i, entry := range entries {
			src := Source{Name: fmt.Sprintf("%s#%s[%d]", path, locale, i), Text: entry.Text, Override: entry.Override}
			if entry.File != "" {
				file := entry.File
				if !filepath.IsAbs(file) {
					file = filepath.Join(base, file)
				}
				data, err := os.ReadFile(file)
				if err != nil {
					return nil, fmt.Errorf("fluency: read %s: %w", file, err)
				}
				src.Name = file
				src.Text = string(data)
			}
			sources[locale] = append(sources[locale], src)
		}
	}
	return sources, nil
}

func decodeManifest(path string, data []byte) (*manifest, error) {
	var m manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("yaml parse error: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("toml parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported extension %s", ext)
	}

	if len(m.Locales) == 0 {
		return nil, errors.New("manifest lists no locales")
	}
	return &m, nil
}

// mergeSources appends src into dst, keeping path order per locale.
func mergeSources(dst, src Sources) {
	for locale, docs := range src {
		dst[locale] = append(dst[locale], docs...)
	}
}
