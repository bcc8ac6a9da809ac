// internal/models/options.go
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Option schemas are plain JSON Schema documents. Unrecognized keys are
// rejected via additionalProperties, so a typo never silently reaches the
// wire.

func textOptionsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"temperature": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     2,
				"description": "Sampling temperature (0-2)",
			},
			"max_tokens": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Maximum tokens to generate",
			},
		},
	}
}

func imageOptionsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"size": map[string]any{
				"type":        "string",
				"enum":        []string{"512x512", "768x768", "1024x1024", "1792x1024", "1024x1792"},
				"description": "Output image dimensions",
			},
			"quality": map[string]any{
				"type":        "string",
				"enum":        []string{"standard", "hd"},
				"description": "Rendering quality",
			},
		},
	}
}

func videoOptionsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"duration": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Clip length in seconds",
			},
			"aspect_ratio": map[string]any{
				"type":        "string",
				"enum":        []string{"16:9", "9:16", "1:1", "4:3", "3:4", "21:9"},
				"description": "Output aspect ratio",
			},
		},
	}
}

func audioOptionsSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"voice": map[string]any{
				"type":        "string",
				"description": "Voice identifier",
			},
			"speed": map[string]any{
				"type":        "number",
				"minimum":     0.5,
				"maximum":     2.0,
				"description": "Playback speed multiplier",
			},
		},
	}
}

// validateOptions checks the given options against a facade's schema. Any
// violation is a ConfigError and no network call is made.
func validateOptions(schema map[string]any, options map[string]any) error {
	if len(options) == 0 {
		return nil
	}
	optBytes, err := json.Marshal(options)
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("marshal options for validation: %v", err)}
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(optBytes))
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("schema validation error: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return &ConfigError{Reason: "options failed validation: " + strings.Join(details, "; ")}
}

// copyOptions copies the listed option keys into the request payload as
// top-level fields, which is how the Poe generation endpoints expect them.
func copyOptions(payload map[string]any, options map[string]any, keys ...string) {
	for _, key := range keys {
		if value, ok := options[key]; ok && value != nil {
			payload[key] = value
		}
	}
}
