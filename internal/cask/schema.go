package cask

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

//go:embed descriptor.schema.json
var schemaJSON string

const schemaURL = "descriptor.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func descriptorSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load descriptor schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateSchema checks a YAML or JSON descriptor document against the
// embedded schema before it is decoded.
func ValidateSchema(doc []byte) error {
	sch, err := descriptorSchema()
	if err != nil {
		return err
	}
	jsonDoc, err := yaml.YAMLToJSON(doc)
	if err != nil {
		return fmt.Errorf("descriptor is not valid yaml: %w", err)
	}
	var v any
	if err := json.Unmarshal(jsonDoc, &v); err != nil {
		return fmt.Errorf("descriptor is not valid json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("descriptor does not match schema: %w", err)
	}
	return nil
}
