// Package prompts provides the built-in prompt templates used when a
// deployment has no configured prompt variants. Templates live in an embedded
// JSON file keyed by operation.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed decompose.json
var templateJSON []byte

// Keys into the embedded template file.
const (
	KeyDecompose  = "decompose-epic"
	KeyRegenerate = "regenerate-story"
)

// templates decodes the embedded file once. The file ships inside the binary;
// a decode failure is a build defect, not a runtime condition.
var templates = sync.OnceValue(func() map[string]string {
	m := map[string]string{}
	if err := json.Unmarshal(templateJSON, &m); err != nil {
		panic(fmt.Sprintf("embedded prompt templates are invalid: %v", err))
	}
	return m
})

// Get returns the template stored under key.
func Get(key string) (string, error) {
	template, ok := templates()[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return template, nil
}

// Format substitutes {{.Name}} placeholders with the given values.
func Format(template string, values map[string]string) string {
	pairs := make([]string, 0, 2*len(values))
	for name, value := range values {
		pairs = append(pairs, "{{."+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// DefaultDecomposeTemplate returns the built-in epic decomposition template.
func DefaultDecomposeTemplate() string {
	return mustGet(KeyDecompose)
}

// DefaultRegenerateTemplate returns the built-in single-story template.
func DefaultRegenerateTemplate() string {
	return mustGet(KeyRegenerate)
}

func mustGet(key string) string {
	template, err := Get(key)
	if err != nil {
		panic(err)
	}
	return template
}
