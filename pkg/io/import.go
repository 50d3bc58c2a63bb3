package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pathtrace/pkg/errors"
	"github.com/matzehuels/pathtrace/pkg/graph"
	"github.com/matzehuels/pathtrace/pkg/heuristic"
)

// Format is a document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// MaxDocumentSize bounds documents read through Read.
const MaxDocumentSize = 64 << 20

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsn":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported extension %q (use .json, .yaml or .yml)", filepath.Ext(path))
}

// Document is a normalized graph file.
type Document struct {
	Graph      *graph.Graph
	Heuristics heuristic.Table
	Config     map[string]any
}

// ReadFile loads and normalizes the document at path.
func ReadFile(path string) (*Document, error) {
	raw, err := ReadRawFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ReadRawFile decodes the file at path without normalizing it.
func ReadRawFile(path string) (any, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data, format)
}

// Read decodes and normalizes a document from r. Read does not close r.
func Read(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document exceeds %d bytes", MaxDocumentSize)
	}
	raw, err := Unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Unmarshal decodes data in the given format into generic maps and slices.
func Unmarshal(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	return raw, nil
}

// Decode normalizes a decoded structure into a Document. Wrapper documents
// contribute heuristics and config; bare graphs get an empty table.
func Decode(raw any) (*Document, error) {
	doc := &Document{Heuristics: heuristic.Table{}, Config: map[string]any{}}

	graphRaw := raw
	if parts, ok := graph.Unwrap(raw); ok {
		if parts.Graph == nil {
			return nil, errors.Format("document has no graph section")
		}
		graphRaw = parts.Graph
		h, err := heuristic.Normalize(parts.Heuristic)
		if err != nil {
			return nil, err
		}
		doc.Heuristics = h
		if parts.Config != nil {
			doc.Config = parts.Config
		}
	}

	g, err := graph.Normalize(graphRaw)
	if err != nil {
		return nil, err
	}
	doc.Graph = g
	return doc, nil
}

// Defaults holds search parameters suggested by a document's config section.
// Zero values mean the document does not set them.
type Defaults struct {
	Algorithm string
	Start     string
	Goal      string
	Weight    float64
	Directed  bool
}

// Defaults extracts known keys from the config section. Values of the wrong
// type are ignored.
func (d *Document) Defaults() Defaults {
	var out Defaults
	if d == nil || d.Config == nil {
		return out
	}
	str := func(keys ...string) string {
		for _, k := range keys {
			if s, ok := d.Config[k].(string); ok {
				return s
			}
		}
		return ""
	}
	out.Algorithm = str("algorithm", "algoritmo")
	out.Start = str("start", "inicio")
	out.Goal = str("goal", "objetivo")
	for _, k := range []string{"weight", "peso"} {
		if w, ok := graph.ToFloat(d.Config[k]); ok {
			out.Weight = w
			break
		}
	}
	if b, ok := d.Config["directed"].(bool); ok {
		out.Directed = b
	}
	return out
}
