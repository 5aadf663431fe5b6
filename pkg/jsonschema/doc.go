// Package jsonschema generates JSON Schema documents from Go types.
//
// Schemas are reflected with [github.com/invopop/jsonschema] and can be
// adjusted property by property before they are rendered as JSON or YAML.
package jsonschema
