// Package template manages discovery and resolution of .glabels template
// files in the configured templates directory.
package template

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Template-related errors.
var (
	// ErrNotFound is returned when no template with the given name exists.
	ErrNotFound = errors.New("template not found")

	// ErrInvalidName is returned for names that are not plain .glabels
	// filenames (wrong extension, path separators, traversal).
	ErrInvalidName = errors.New("invalid template name")
)

// Info describes one template file, including the merge configuration a
// producer needs to shape its data: whether the CSV carries a header row and
// which field names (or column positions) the design references.
type Info struct {
	Name       string    `json:"name"`
	FormatType string    `json:"format_type"`
	HasHeaders bool      `json:"has_headers"`
	Fields     []string  `json:"fields"`
	FieldCount int       `json:"field_count"`
	MergeType  string    `json:"merge_type"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Service lists and resolves templates. Lookup is case-insensitive on the
// filename, matching how operators tend to refer to templates.
type Service struct {
	dir    string
	logger *slog.Logger
}

// NewService creates a template Service rooted at dir.
func NewService(dir string, logger *slog.Logger) *Service {
	return &Service{
		dir:    dir,
		logger: logger.With(slog.String("component", "template_service")),
	}
}

// List returns all parsable templates in the directory, sorted by name.
// Files that cannot be parsed are logged and skipped. A missing directory
// yields an empty list, not an error.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("templates directory not found", slog.String("dir", s.dir))
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read templates directory: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".glabels") {
			continue
		}
		info, err := s.describePath(entry.Name(), filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping unparsable template",
				slog.String("name", entry.Name()), slog.Any("error", err))
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Describe returns the parsed metadata for a single template.
func (s *Service) Describe(name string) (Info, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return Info{}, err
	}
	return s.describePath(filepath.Base(path), path)
}

func (s *Service) describePath(name, path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("cannot stat template: %w", err)
	}
	m, err := parseMeta(path)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Name:       name,
		FormatType: "CSV",
		HasHeaders: m.HasHeaders,
		Fields:     m.Fields,
		FieldCount: len(m.Fields),
		MergeType:  m.MergeType,
		SizeBytes:  fi.Size(),
		ModifiedAt: fi.ModTime(),
	}, nil
}

// Resolve returns the path of the template with the given name, matching
// case-insensitively. Returns ErrInvalidName for malformed names and
// ErrNotFound when no file matches.
func (s *Service) Resolve(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to read templates directory: %w", err)
	}

	lower := strings.ToLower(name)
	for _, entry := range entries {
		if !entry.IsDir() && strings.ToLower(entry.Name()) == lower {
			return filepath.Join(s.dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Exists reports whether a template with the given name is resolvable.
func (s *Service) Exists(name string) bool {
	_, err := s.Resolve(name)
	return err == nil
}

func validateName(name string) error {
	if !strings.HasSuffix(strings.ToLower(name), ".glabels") {
		return fmt.Errorf("%w: %q must end with .glabels", ErrInvalidName, name)
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q must be a plain filename", ErrInvalidName, name)
	}
	return nil
}
