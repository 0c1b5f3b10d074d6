package artifacts

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const scalerSchema = `{
	"type": "object",
	"required": ["kind", "feature_names"],
	"properties": {
		"kind": {"enum": ["standard", "minmax"]},
		"feature_names": {"$ref": "#/$defs/names"},
		"mean": {"$ref": "#/$defs/vector"},
		"scale": {"$ref": "#/$defs/vector"},
		"data_min": {"$ref": "#/$defs/vector"},
		"data_max": {"$ref": "#/$defs/vector"}
	},
	"allOf": [
		{"if": {"properties": {"kind": {"const": "standard"}}}, "then": {"required": ["mean", "scale"]}},
		{"if": {"properties": {"kind": {"const": "minmax"}}}, "then": {"required": ["data_min", "data_max"]}}
	],
	"$defs": {
		"names": {"type": "array", "items": {"type": "string"}, "minItems": 12, "maxItems": 12},
		"vector": {"type": "array", "items": {"type": "number"}, "minItems": 12, "maxItems": 12}
	}
}`

const classifierSchema = `{
	"type": "object",
	"required": ["kind", "feature_names"],
	"properties": {
		"kind": {"enum": ["logistic_regression", "decision_tree", "random_forest"]},
		"feature_names": {"type": "array", "items": {"type": "string"}, "minItems": 12, "maxItems": 12},
		"coefficients": {"type": "array", "items": {"type": "number"}, "minItems": 12, "maxItems": 12},
		"intercept": {"type": "number"},
		"threshold": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
		"nodes": {"$ref": "#/$defs/nodes"},
		"trees": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "object", "required": ["nodes"], "properties": {"nodes": {"$ref": "#/$defs/nodes"}}}
		}
	},
	"allOf": [
		{"if": {"properties": {"kind": {"const": "logistic_regression"}}}, "then": {"required": ["coefficients", "intercept"]}},
		{"if": {"properties": {"kind": {"const": "decision_tree"}}}, "then": {"required": ["nodes"]}},
		{"if": {"properties": {"kind": {"const": "random_forest"}}}, "then": {"required": ["trees"]}}
	],
	"$defs": {
		"nodes": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["is_leaf"],
				"properties": {
					"feature_idx": {"type": "integer"},
					"threshold": {"type": "number"},
					"left_child": {"type": "integer"},
					"right_child": {"type": "integer"},
					"class_label": {"type": "integer"},
					"is_leaf": {"type": "boolean"}
				}
			}
		}
	}
}`

var (
	compileOnce    sync.Once
	compiled       map[string]*jsonschema.Schema
	compileFailure error
)

// schemaFor returns the compiled schema for "scaler" or "classifier"
func schemaFor(name string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*jsonschema.Schema)
		sources := map[string]string{"scaler": scalerSchema, "classifier": classifierSchema}
		for n, src := range sources {
			doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
			if err != nil {
				compileFailure = fmt.Errorf("parse %s schema: %w", n, err)
				return
			}
			c := jsonschema.NewCompiler()
			url := fmt.Sprintf("schema://%s.json", n)
			if err := c.AddResource(url, doc); err != nil {
				compileFailure = fmt.Errorf("add %s schema: %w", n, err)
				return
			}
			sch, err := c.Compile(url)
			if err != nil {
				compileFailure = fmt.Errorf("compile %s schema: %w", n, err)
				return
			}
			compiled[n] = sch
		}
	})
	if compileFailure != nil {
		return nil, compileFailure
	}
	return compiled[name], nil
}

// validateDocument checks normalised JSON against the named schema
func validateDocument(name string, data []byte) error {
	sch, err := schemaFor(name)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
