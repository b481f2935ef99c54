package template

import (
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupportedMerge is returned for templates whose merge source is not a
// comma-separated text format.
var ErrUnsupportedMerge = errors.New("unsupported merge type")

// ErrBadTemplate is returned when a template file cannot be decompressed or
// parsed as a glabels document.
var ErrBadTemplate = errors.New("invalid template file")

// meta is the merge configuration extracted from a glabels document.
type meta struct {
	MergeType  string
	HasHeaders bool
	Fields     []string
}

// parseMeta reads a gzip-compressed glabels document and extracts its merge
// type and the field names referenced by the label design. Templates whose
// merge type carries "Line1Keys" expect a CSV header row and reference fields
// by name; the rest reference columns by position.
func parseMeta(path string) (meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return meta{}, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = f.Close() }()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return meta{}, fmt.Errorf("%w: not gzip-compressed: %v", ErrBadTemplate, err)
	}
	defer func() { _ = zr.Close() }()

	var mergeType string
	fieldSet := make(map[string]struct{})

	dec := xml.NewDecoder(zr)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return meta{}, fmt.Errorf("%w: %v", ErrBadTemplate, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if se.Name.Local == "Merge" && mergeType == "" {
			for _, attr := range se.Attr {
				if attr.Name.Local == "type" {
					mergeType = attr.Value
				}
			}
		}

		// Field references appear both as <Field name="..."/> children of
		// text objects and as field="..." attributes on barcode objects.
		for _, attr := range se.Attr {
			named := se.Name.Local == "Field" && attr.Name.Local == "name"
			if (named || attr.Name.Local == "field") && attr.Value != "" {
				fieldSet[attr.Value] = struct{}{}
			}
		}
	}

	if mergeType == "" {
		return meta{}, fmt.Errorf("%w: missing Merge element", ErrBadTemplate)
	}
	if !strings.Contains(mergeType, "Comma") {
		return meta{}, fmt.Errorf("%w: %q", ErrUnsupportedMerge, mergeType)
	}

	m := meta{
		MergeType:  mergeType,
		HasHeaders: strings.Contains(mergeType, "Line1Keys"),
	}
	for name := range fieldSet {
		if m.HasHeaders {
			m.Fields = append(m.Fields, name)
			continue
		}
		// Positional merges only use numeric column references.
		if _, err := strconv.Atoi(name); err == nil {
			m.Fields = append(m.Fields, name)
		}
	}

	if m.HasHeaders {
		sort.Strings(m.Fields)
	} else {
		sort.Slice(m.Fields, func(i, j int) bool {
			a, _ := strconv.Atoi(m.Fields[i])
			b, _ := strconv.Atoi(m.Fields[j])
			return a < b
		})
	}
	return m, nil
}
