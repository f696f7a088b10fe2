package log

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"

	"go.jacobcolvin.com/treelog/value"
)

func closed() *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}}
}

func stringMap(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:                 "object",
		Description:          desc,
		AdditionalProperties: &jsonschema.Schema{Type: "string"},
	}
}

func stringList(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: desc,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

func enum[T ~string](vals ...T) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}

	return out
}

// ConfigSchema returns the JSON schema of [FileConfig] documents.
func ConfigSchema() *jsonschema.Schema {
	kinds := make(map[string]*jsonschema.Schema)
	for _, k := range value.KindNames() {
		kinds[k] = &jsonschema.Schema{Type: "string"}
	}

	logger := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"name"},
		Properties: map[string]*jsonschema.Schema{
			"name":     {Type: "string", Description: "Logger name."},
			"color":    {Type: "string", Description: "Palette expression, e.g. fore.cyan+bold."},
			"enabled":  {Type: "boolean"},
			"handlers": stringList("Names of handlers; replaces the inherited list."),
		},
		AdditionalProperties: closed(),
	}

	return &jsonschema.Schema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		Title:       "treelog configuration",
		Type:        "object",
		Description: "Levels, formatters, handlers and the logger tree.",
		Defs: map[string]*jsonschema.Schema{
			"logger": logger,
			"group": {
				Type:     "object",
				Required: []string{"name"},
				Properties: map[string]*jsonschema.Schema{
					"name":     {Type: "string", Description: "Group name; nested groups join with dots."},
					"color":    {Type: "string"},
					"enabled":  {Type: "boolean"},
					"handlers": stringList("Names of handlers shared by the group."),
					"groups":   {Type: "array", Items: &jsonschema.Schema{Ref: "#/$defs/group"}},
					"loggers":  {Type: "array", Items: &jsonschema.Schema{Ref: "#/$defs/logger"}},
				},
				AdditionalProperties: closed(),
			},
		},
		Properties: map[string]*jsonschema.Schema{
			"levels": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"name", "priority"},
					Properties: map[string]*jsonschema.Schema{
						"name":     {Type: "string"},
						"priority": {Type: "integer", Description: "Lower is more verbose."},
					},
					AdditionalProperties: closed(),
				},
			},
			"colors": {
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"types": {
						Type:                 "object",
						Properties:           kinds,
						AdditionalProperties: closed(),
					},
					"levels":    stringMap("Level colors by level name."),
					"exception": {Type: "string"},
					"all":       {Type: "string"},
				},
				AdditionalProperties: closed(),
			},
			"formatters": {
				Type: "object",
				AdditionalProperties: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"format":         {Type: "string", Enum: enum(allFormats...)},
						"preset":         {Type: "string", Enum: enum(allPresets...)},
						"layout":         {Type: "string", Description: "Line template; overrides preset."},
						"timeLayout":     {Type: "string"},
						"variables":      {Type: "object"},
						"disableOffsets": {Type: "boolean"},
						"repr":           {Type: "boolean"},
					},
					AdditionalProperties: closed(),
				},
			},
			"handlers": {
				Type: "object",
				AdditionalProperties: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"sink": {
							Type: "string",
							Enum: enum(SinkStdout, SinkStderr, SinkFile, SinkDiscard, SinkPublisher),
						},
						"path":      {Type: "string"},
						"formatter": {Type: "string"},
						"level": {
							Description: "Level name, priority, or allow-list.",
							AnyOf: []*jsonschema.Schema{
								{Type: "string"},
								{Type: "integer"},
								{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
							},
						},
						"logExceptions": {Type: "boolean"},
						"enabled":       {Type: "boolean"},
						"bufferSize":    {Type: "integer"},
					},
					AdditionalProperties: closed(),
				},
			},
			"groups":  {Type: "array", Items: &jsonschema.Schema{Ref: "#/$defs/group"}},
			"loggers": {Type: "array", Items: &jsonschema.Schema{Ref: "#/$defs/logger"}},
		},
		AdditionalProperties: closed(),
	}
}

// ValidateConfig validates a YAML document against [ConfigSchema]. Empty
// documents are valid.
func ValidateConfig(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var inst any

	err = json.Unmarshal(js, &inst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if inst == nil {
		return nil
	}

	resolved, err := ConfigSchema().Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve config schema: %w", err)
	}

	err = resolved.Validate(inst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
