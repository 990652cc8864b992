package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed sitegen-config.schema.json
var configSchema []byte

// ValidateConfig validates JSON configuration data against the embedded schema
func ValidateConfig(configData []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(configData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

// ValidateFile validates a config file by extension. YAML is converted to
// JSON first; other formats viper understands are accepted unchecked.
func ValidateFile(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ValidateConfig(data)
	case ".yaml", ".yml":
		jsonData, err := yamlToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return ValidateConfig(jsonData)
	default:
		return nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return json.Marshal(doc)
}
