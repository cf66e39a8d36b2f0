package service

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const headersSchemaJSON = `{
  "type": "object",
  "required": ["headers"],
  "properties": {
    "headers": {"type": "array", "minItems": 1, "items": {"type": "string"}}
  }
}`

const analysisSchemaJSON = `{
  "type": "object",
  "required": ["plotData", "personaData"],
  "properties": {
    "plotData": {
      "type": "object",
      "required": ["data"],
      "properties": {
        "data": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["Recency", "Frequency", "MonetaryValue", "Cluster"],
            "properties": {
              "Recency": {"type": "number"},
              "Frequency": {"type": "number"},
              "MonetaryValue": {"type": "number"},
              "Cluster": {"type": "integer", "minimum": 0}
            }
          }
        }
      }
    },
    "personaData": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["cluster_id", "persona", "description", "avg_recency", "avg_frequency", "avg_monetary"],
        "properties": {
          "cluster_id": {"type": "integer", "minimum": 0},
          "persona": {"type": "string"},
          "description": {"type": "string"},
          "avg_recency": {"type": "number"},
          "avg_frequency": {"type": "number"},
          "avg_monetary": {"type": "number"}
        }
      }
    }
  }
}`

const healthSchemaJSON = `{
  "type": "object",
  "required": ["status"],
  "properties": {"status": {"type": "string"}}
}`

var (
	headersSchema  = mustCompile("headers.json", headersSchemaJSON)
	analysisSchema = mustCompile("analysis.json", analysisSchemaJSON)
	healthSchema   = mustCompile("health.json", healthSchemaJSON)
)

func mustCompile(name, src string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("service: parse %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("service: add %s: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("service: compile %s: %v", name, err))
	}
	return sch
}
