package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/hexpatch/internal/input/key"
)

// Format is a settings file encoding.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Section names.
const (
	SectionKey    = "key"
	SectionColor  = "color"
	SectionCustom = "custom"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadFile reads a settings file on top of the defaults.
func LoadFile(path string) (*Settings, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	s := Default()
	if err := s.Decode(path, data, format); err != nil {
		return nil, err
	}
	return s, nil
}

// Decode parses data and applies it to s. source is used in errors.
func (s *Settings) Decode(source string, data []byte, format Format) error {
	raw, err := decode(data, format)
	if err != nil {
		return &ParseError{Path: source, Err: err}
	}
	return s.apply(source, raw)
}

func decode(data []byte, format Format) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	n, _ := normalize(raw).(map[string]any)
	return n, nil
}

// normalize rewrites decoder-specific shapes into plain Go values:
// json.Number becomes int64 or float64, and YAML maps with non-string keys
// are stringified.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case int:
		return int64(x)
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}

func (s *Settings) apply(source string, raw map[string]any) error {
	for section, body := range raw {
		switch section {
		case SectionKey, SectionColor, SectionCustom:
		default:
			return &ParseError{Path: source, Field: section, Err: fmt.Errorf("%w: section %q", ErrUnknownSetting, section)}
		}
		table, ok := body.(map[string]any)
		if !ok {
			return &ParseError{Path: source, Field: section, Err: fmt.Errorf("section must be a table, got %T", body)}
		}

		for name, v := range table {
			field := section + "." + name
			var err error
			switch section {
			case SectionKey:
				var e key.Event
				if e, err = key.FromValue(v); err == nil {
					err = s.SetKeyBinding(name, e)
				}
			case SectionColor:
				var st Style
				if st, err = ParseStyle(v); err == nil {
					err = s.SetColorStyle(name, st)
				}
			case SectionCustom:
				var val Value
				if val, err = ValueOf(v); err == nil {
					s.SetCustom(name, val)
				}
			}
			if err != nil {
				return &ParseError{Path: source, Field: field, Err: err}
			}
		}
	}
	return nil
}
