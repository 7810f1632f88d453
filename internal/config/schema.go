package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"ResearchAgent/internal/domain"
)

//go:embed config.schema.json
var configSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// validateDocument checks the raw YAML document against the embedded
// schema so typos and wrong types fail before decoding.
func validateDocument(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &domain.ConfigurationError{Field: "file", Reason: "cannot parse yaml", Err: err}
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return &domain.ConfigurationError{Field: "file", Reason: "cannot convert yaml to json", Err: err}
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return &domain.ConfigurationError{Field: "file", Reason: "cannot decode document", Err: err}
	}

	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load config schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		return &domain.ConfigurationError{Field: "file", Reason: "schema validation failed", Err: err}
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("config.schema.json", strings.NewReader(configSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("config.schema.json")
	})
	return compiledSchema, compiledSchemaErr
}
