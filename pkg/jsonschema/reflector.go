package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	invopopjsonschema "github.com/invopop/jsonschema"
	"sigs.k8s.io/yaml"
)

const (
	JSONFormat = "json"
	YAMLFormat = "yaml"
)

var ErrUnknownFormat = errors.New("unknown schema format")

type Reflector struct {
	Reflector *invopopjsonschema.Reflector
}

func NewReflector() *Reflector {
	return &Reflector{
		Reflector: &invopopjsonschema.Reflector{
			DoNotReference: true,
			ExpandedStruct: true,
		},
	}
}

func (r *Reflector) Reflect(t reflect.Type) *Schema {
	return &Schema{Schema: r.Reflector.ReflectFromType(t)}
}

// Schema is a reflected JSON Schema.
type Schema struct {
	*invopopjsonschema.Schema
}

// PropertyOpt modifies a single property of a [Schema].
type PropertyOpt func(*invopopjsonschema.Schema)

func WithType(t string) PropertyOpt {
	return func(s *invopopjsonschema.Schema) {
		s.Type = t
	}
}

func WithEnum(enum []any) PropertyOpt {
	return func(s *invopopjsonschema.Schema) {
		s.Enum = enum
	}
}

func WithDefault(v any) PropertyOpt {
	return func(s *invopopjsonschema.Schema) {
		s.Default = v
	}
}

func WithPattern(pattern string) PropertyOpt {
	return func(s *invopopjsonschema.Schema) {
		s.Pattern = pattern
	}
}

// SetProperty applies opts to the named property. Unknown properties are
// ignored.
func (s *Schema) SetProperty(name string, opts ...PropertyOpt) {
	if s.Properties == nil {
		return
	}

	prop, ok := s.Properties.Get(name)
	if !ok {
		return
	}

	for _, opt := range opts {
		opt(prop)
	}
}

// Marshal renders the schema in the given format, "json" or "yaml".
func (s *Schema) Marshal(format string) ([]byte, error) {
	jsBytes, err := json.MarshalIndent(s.Schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json schema: %w", err)
	}

	switch strings.ToLower(format) {
	case JSONFormat, "":
		return append(jsBytes, '\n'), nil
	case YAMLFormat:
		yamlBytes, err := yaml.JSONToYAML(jsBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to convert json schema to yaml: %w", err)
		}

		return yamlBytes, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
