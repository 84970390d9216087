package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/yame/internal/core/component"
	"github.com/zeusync/yame/internal/core/observability/log"
	"github.com/zeusync/yame/pkg/generic"
)

// Format is the encoding of a persisted document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	ErrUnknownFormat = errors.New("unknown document format")
	ErrTrailingData  = errors.New("trailing data after document")
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// file is the persisted shape of a document.
type file struct {
	Name       string           `json:"name" yaml:"name"`
	Components []component.Data `json:"components" yaml:"components"`
}

// rawFile defers component decoding to the registry.
type rawFile struct {
	Name       string `json:"name" yaml:"name"`
	Components []any  `json:"components" yaml:"components"`
}

// Snapshot returns the serialized shapes of the roots, in order.
func (d *Document) Snapshot() ([]component.Data, error) {
	out := make([]component.Data, 0, len(d.order))
	for _, c := range d.Components() {
		data, err := d.registry.Serialize(c)
		if err != nil {
			return nil, fmt.Errorf("serialize %q: %w", c.Name(), err)
		}
		out = append(out, data)
	}
	return out, nil
}

// Save writes the document to w and marks it clean.
func (d *Document) Save(w io.Writer, format Format) error {
	components, err := d.Snapshot()
	if err != nil {
		return err
	}
	f := file{Name: d.name, Components: components}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(f); err == nil {
			err = enc.Close()
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("save document %q: %w", d.name, err)
	}
	d.dirty = false
	d.logger.Debug("Document saved", log.String("format", string(format)), log.Int("components", len(components)))
	return nil
}

// Load reads a document from r. Either every component is rebuilt or an
// error is returned.
func Load(r io.Reader, format Format, opts ...Option) (*Document, error) {
	var raw rawFile
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, ErrTrailingData
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		var extra any
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return nil, ErrTrailingData
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	d := New(raw.Name, opts...)
	built := make([]component.Component, 0, len(raw.Components))
	for i, node := range raw.Components {
		c, err := d.registry.Decode(node)
		if err != nil {
			return nil, fmt.Errorf("document %q component %d: %w", raw.Name, i, err)
		}
		built = append(built, c)
	}
	for _, c := range built {
		if err := d.Add(c); err != nil {
			return nil, err
		}
	}
	d.dirty = false
	d.logger.Debug("Document loaded", log.String("format", string(format)), log.Int("components", len(built)))
	return d, nil
}

// Fingerprint hashes the canonical JSON of the whole document. Documents with
// equal names and equal roots in the same order have equal fingerprints.
func (d *Document) Fingerprint() (uint64, error) {
	components, err := d.Snapshot()
	if err != nil {
		return 0, err
	}
	buf := generic.Buffers.Get()
	defer generic.Buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(file{Name: d.name, Components: components}); err != nil {
		return 0, err
	}
	return xxhash.Sum64(buf.Bytes()), nil
}
