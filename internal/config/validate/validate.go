package validate

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

const schemaBaseURL = "https://content-resolver/schemas/"

//go:embed schemas/*.json
var schemaFS embed.FS

// documentSchemas maps a document type to its embedded schema file.
var documentSchemas = map[string]string{
	"feedback-pipeline-repository":   "repository.schema.json",
	"feedback-pipeline-environment":  "environment.schema.json",
	"feedback-pipeline-workload":     "workload.schema.json",
	"feedback-pipeline-label":        "label.schema.json",
	"feedback-pipeline-compose-view": "compose-view.schema.json",
	"feedback-pipeline-unwanted":     "unwanted.schema.json",
	"feedback-pipeline-buildroot":    "buildroot.schema.json",
	"buildroot-binary-relations":     "buildroot-binary-relations.schema.json",
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// HasSchema reports whether documents of this type can be validated.
func HasSchema(document string) bool {
	_, ok := documentSchemas[document]
	return ok
}

// ValidateDocument validates a YAML or JSON configuration document of the
// given type against its embedded schema.
func ValidateDocument(document string, data []byte) error {
	compileOnce.Do(compileEmbedded)
	if compileErr != nil {
		return compileErr
	}
	sch, ok := compiled[document]
	if !ok {
		return fmt.Errorf("no schema for document type %q", document)
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("converting %s document to JSON: %w", document, err)
	}
	return validateJSON(sch, document, jsonData)
}

// ValidateAgainstSchema compiles a standalone schema and validates JSON data
// against it. ref optionally selects a fragment of the schema, e.g. "#/$defs/x".
func ValidateAgainstSchema(name string, schema []byte, data []byte, ref string) error {
	compiler := jsonschema.NewCompiler()
	url := schemaBaseURL + name
	if err := compiler.AddResource(url, bytes.NewReader(schema)); err != nil {
		return fmt.Errorf("adding schema %s: %w", name, err)
	}
	sch, err := compiler.Compile(url + ref)
	if err != nil {
		return fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return validateJSON(sch, name, data)
}

func validateJSON(sch *jsonschema.Schema, name string, data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("schema validation against %s failed: %w", name, err)
	}
	return nil
}

func compileEmbedded() {
	compiler := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		compileErr = fmt.Errorf("reading embedded schemas: %w", err)
		return
	}
	for _, e := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			compileErr = fmt.Errorf("reading schema %s: %w", e.Name(), err)
			return
		}
		if err := compiler.AddResource(schemaBaseURL+e.Name(), bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("adding schema %s: %w", e.Name(), err)
			return
		}
	}

	compiled = make(map[string]*jsonschema.Schema, len(documentSchemas))
	for document, file := range documentSchemas {
		sch, err := compiler.Compile(schemaBaseURL + file)
		if err != nil {
			compileErr = fmt.Errorf("compiling schema %s: %w", file, err)
			return
		}
		compiled[document] = sch
	}
}
