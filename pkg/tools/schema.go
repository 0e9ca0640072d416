package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrMalformedArguments is matched by every error returned from Schema.Decode.
var ErrMalformedArguments = errors.New("malformed tool arguments")

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeNumber      ParamType = "number"
	TypeStringArray ParamType = "string_array"
	TypeNumberArray ParamType = "number_array"
	TypeEnum        ParamType = "enum"
)

// Param declares one tool parameter.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Enum lists the accepted values for TypeEnum.
	Enum []string
}

// Schema is the ordered parameter list of a tool.
type Schema struct {
	Params []Param
}

// ArgumentError describes the first parameter that failed to decode.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Param == "" {
		return "invalid arguments: " + e.Reason
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Param, e.Reason)
}

// Is reports ErrMalformedArguments so callers can use errors.Is.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrMalformedArguments
}

// InputSchema returns the schema as a JSON Schema object.
func (s Schema) InputSchema() *jsonschema.Schema {
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(s.Params)),
	}
	for _, p := range s.Params {
		prop := &jsonschema.Schema{Description: p.Description}
		switch p.Type {
		case TypeStringArray:
			prop.Type = "array"
			prop.Items = &jsonschema.Schema{Type: "string"}
		case TypeNumberArray:
			prop.Type = "array"
			prop.Items = &jsonschema.Schema{Type: "number"}
		case TypeEnum:
			prop.Type = "string"
			for _, v := range p.Enum {
				prop.Enum = append(prop.Enum, v)
			}
		default:
			prop.Type = string(p.Type)
		}
		out.Properties[p.Name] = prop
		if p.Required {
			out.Required = append(out.Required, p.Name)
		}
	}
	return out
}

// JSONSchema renders InputSchema as JSON for the model service.
func (s Schema) JSONSchema() json.RawMessage {
	data, err := json.Marshal(s.InputSchema())
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return data
}

// Decode parses a JSON arguments object and checks it against the schema.
// Required parameters must be present and every declared parameter must
// have its declared type. Undeclared keys are ignored.
func (s Schema) Decode(arguments string) (Args, error) {
	raw := map[string]json.RawMessage{}
	if strings.TrimSpace(arguments) != "" {
		if err := json.Unmarshal([]byte(arguments), &raw); err != nil {
			return Args{}, &ArgumentError{Reason: "arguments must be a JSON object"}
		}
	}

	args := Args{values: make(map[string]any, len(s.Params))}
	for _, p := range s.Params {
		data, ok := raw[p.Name]
		if !ok || string(data) == "null" {
			if p.Required {
				return Args{}, &ArgumentError{Param: p.Name, Reason: "is required"}
			}
			continue
		}

		v, err := decodeValue(p, data)
		if err != nil {
			return Args{}, &ArgumentError{Param: p.Name, Reason: err.Error()}
		}
		args.values[p.Name] = v
	}
	return args, nil
}

func decodeValue(p Param, data json.RawMessage) (any, error) {
	switch p.Type {
	case TypeString:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.New("expected string")
		}
		return s, nil

	case TypeNumber:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.New("expected number")
		}
		return f, nil

	case TypeStringArray:
		var ss []string
		if err := json.Unmarshal(data, &ss); err != nil {
			return nil, errors.New("expected array of strings")
		}
		return ss, nil

	case TypeNumberArray:
		var fs []float64
		if err := json.Unmarshal(data, &fs); err != nil {
			return nil, errors.New("expected array of numbers")
		}
		return fs, nil

	case TypeEnum:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, errors.New("expected string")
		}
		if !slices.Contains(p.Enum, s) {
			return nil, fmt.Errorf("must be one of %s", strings.Join(p.Enum, ", "))
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported parameter type %q", p.Type)
	}
}

// Args holds arguments decoded by Schema.Decode. Accessors return the zero
// value for parameters that were optional and absent.
type Args struct {
	values map[string]any
}

// Has reports whether name was supplied.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// String returns a string or enum parameter.
func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Number returns a number parameter.
func (a Args) Number(name string) float64 {
	f, _ := a.values[name].(float64)
	return f
}

// Strings returns a string array parameter.
func (a Args) Strings(name string) []string {
	ss, _ := a.values[name].([]string)
	return ss
}

// Numbers returns a number array parameter.
func (a Args) Numbers(name string) []float64 {
	fs, _ := a.values[name].([]float64)
	return fs
}
