package cask

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a descriptor serialization.
type Format string

const (
	FormatRuby Format = "rb"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rb":
		return FormatRuby, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown descriptor format for %s (want .rb, .yaml or .json)", path)
	}
}

// ParseFormat accepts the names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "rb", "ruby", "cask":
		return FormatRuby, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want rb, yaml or json)", s)
	}
}

// MarshalYAML writes the checksum as a scalar.
func (c Checksum) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML reads ":no_check" or a hex digest.
func (c *Checksum) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("sha256 must be a string: %w", err)
	}
	*c = checksumFromString(s)
	return nil
}

// MarshalJSON writes the checksum as a string.
func (c Checksum) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON reads ":no_check" or a hex digest.
func (c *Checksum) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("sha256 must be a string: %w", err)
	}
	*c = checksumFromString(s)
	return nil
}

func checksumFromString(s string) Checksum {
	if s == NoCheck || s == "no_check" {
		return Checksum{NoCheck: true}
	}
	return Checksum{Hex: s}
}

// EncodeYAML serializes d as YAML.
func EncodeYAML(d *Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeYAML parses a YAML descriptor. Unknown keys are rejected.
func DecodeYAML(data []byte) (*Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	return &d, nil
}

// EncodeJSON serializes d as indented JSON.
func EncodeJSON(d *Descriptor) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeJSON parses a JSON descriptor. Unknown keys are rejected.
func DecodeJSON(data []byte) (*Descriptor, error) {
	var d Descriptor
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return &d, nil
}

// Encode serializes d in the given format.
func Encode(d *Descriptor, f Format) ([]byte, error) {
	switch f {
	case FormatRuby:
		return Render(d), nil
	case FormatYAML:
		return EncodeYAML(d)
	case FormatJSON:
		return EncodeJSON(d)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Decode parses data in the given format. YAML and JSON documents are
// checked against the descriptor schema first.
func Decode(data []byte, f Format) (*Descriptor, error) {
	switch f {
	case FormatRuby:
		return Parse(bytes.NewReader(data))
	case FormatYAML:
		if err := ValidateSchema(data); err != nil {
			return nil, err
		}
		return DecodeYAML(data)
	case FormatJSON:
		if err := ValidateSchema(data); err != nil {
			return nil, err
		}
		return DecodeJSON(data)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// DecodeFile reads a descriptor, choosing the codec from the extension.
func DecodeFile(path string) (*Descriptor, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}
	d, err := Decode(data, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptor %s: %w", path, err)
	}
	return d, nil
}
