package configstore

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rulesetSchema validates ruleset documents before they are stored. An
// unknown op is a configuration error and must be rejected at write time,
// not silently ignored at evaluation time.
const rulesetSchema = `{
	"type": "object",
	"properties": {
		"enabled": {"type": "boolean"},
		"aggregation": {"enum": ["sum", "avg", "max", "min"]},
		"rules": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "target_path", "op"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"enabled": {"type": "boolean"},
					"target_path": {"type": "string", "minLength": 1},
					"op": {"enum": ["eq", "ne", "gt", "gte", "lt", "lte", "in", "nin", "contains", "regex", "exists"]},
					"weight": {"type": ["number", "null"]},
					"required": {"type": "boolean"},
					"metadata": {"type": "object"}
				}
			}
		},
		"metadata": {"type": "object"}
	},
	"required": ["rules"]
}`

// keywordSchema validates the keyword settings document.
const keywordSchema = `{
	"type": "object",
	"properties": {
		"match_mode": {"enum": ["any", "all"]},
		"match_locations": {
			"type": "array",
			"items": {"enum": ["title", "description", "skills"]}
		},
		"terms": {"type": "array", "items": {"type": "string"}}
	}
}`

// geoSchema validates the geo filters document.
const geoSchema = `{
	"type": "object",
	"properties": {
		"excluded_countries": {"type": "array", "items": {"type": "string"}}
	}
}`

// ValidateRulesetDoc checks a raw ruleset JSON document against the schema.
func ValidateRulesetDoc(doc []byte) error {
	return validateAgainst(rulesetSchema, doc)
}

// ValidateKeywordDoc checks a raw keyword settings document.
func ValidateKeywordDoc(doc []byte) error {
	return validateAgainst(keywordSchema, doc)
}

// ValidateGeoDoc checks a raw geo filters document.
func ValidateGeoDoc(doc []byte) error {
	return validateAgainst(geoSchema, doc)
}

func validateAgainst(schema string, doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed to run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("invalid configuration document: %s", strings.Join(problems, "; "))
}
