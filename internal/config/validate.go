package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// ValidateSettings checks the decoded config file against the embedded
// JSON schema. The returned error lists every problem, not just the first.
func ValidateSettings(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("check config against schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		problems = append(problems, schemaErr.String())
	}
	sort.Strings(problems)

	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}
