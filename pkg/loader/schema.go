package loader

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchemaJSON is the JSON Schema (2020-12) for requirement documents.
// It rejects malformed documents before any rule is compiled: reserved keys
// must carry the right shapes, every other key is a nested block, and "/" is
// banned from block keys because it is the hierarchy separator.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "pattern": {
      "type": "string",
      "pattern": "^[A-Z0-9x*]+$"
    },
    "matchRule": {
      "anyOf": [
        {"$ref": "#/$defs/pattern"},
        {
          "type": "array",
          "items": {"$ref": "#/$defs/matchRule"},
          "minItems": 1
        },
        {
          "type": "object",
          "properties": {
            "pattern": {"$ref": "#/$defs/pattern"},
            "exclude": {
              "anyOf": [
                {"$ref": "#/$defs/pattern"},
                {
                  "type": "array",
                  "items": {"$ref": "#/$defs/pattern"},
                  "minItems": 1
                }
              ]
            },
            "info": {"type": "string"}
          },
          "required": ["pattern"],
          "additionalProperties": false
        },
        {
          "type": "object",
          "properties": {
            "cel": {"type": "string", "minLength": 1},
            "info": {"type": "string"}
          },
          "required": ["cel"],
          "additionalProperties": false
        },
        {
          "type": "object",
          "properties": {
            "and": {
              "type": "array",
              "items": {"$ref": "#/$defs/matchRule"},
              "minItems": 1
            }
          },
          "required": ["and"],
          "additionalProperties": false
        },
        {
          "type": "object",
          "properties": {
            "or": {
              "type": "array",
              "items": {"$ref": "#/$defs/matchRule"},
              "minItems": 1
            }
          },
          "required": ["or"],
          "additionalProperties": false
        }
      ]
    },
    "satisfyRule": {
      "anyOf": [
        {"type": "string", "minLength": 1},
        {
          "type": "array",
          "items": {"$ref": "#/$defs/satisfyRule"},
          "minItems": 1
        },
        {
          "type": "object",
          "properties": {
            "mc": {"type": "string", "pattern": "^[<>]=[0-9]+$"}
          },
          "required": ["mc"],
          "additionalProperties": false
        },
        {
          "type": "object",
          "properties": {
            "and": {
              "type": "array",
              "items": {"$ref": "#/$defs/satisfyRule"},
              "minItems": 1
            }
          },
          "required": ["and"],
          "additionalProperties": false
        },
        {
          "type": "object",
          "properties": {
            "or": {
              "type": "array",
              "items": {"$ref": "#/$defs/satisfyRule"},
              "minItems": 1
            }
          },
          "required": ["or"],
          "additionalProperties": false
        }
      ]
    },
    "block": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "ay": {"type": "string"},
        "requires": {"type": "string", "minLength": 1},
        "assign": {
          "anyOf": [
            {"type": "string", "minLength": 1},
            {
              "type": "array",
              "items": {"type": "string", "minLength": 1},
              "minItems": 1
            }
          ]
        },
        "match": {"$ref": "#/$defs/matchRule"},
        "satisfy": {"$ref": "#/$defs/satisfyRule"},
        "url": {"type": "string"},
        "info": {"type": "string"},
        "isSelectable": {"type": "boolean"}
      },
      "propertyNames": {"pattern": "^[^/]+$"},
      "additionalProperties": {"$ref": "#/$defs/block"}
    }
  },
  "$ref": "#/$defs/block"
}`

const documentSchemaURL = "modcheck://schemas/requirements.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(documentSchemaURL, strings.NewReader(documentSchemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(documentSchemaURL)
	})
	return schema, schemaErr
}
