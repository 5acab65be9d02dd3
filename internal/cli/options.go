package cli

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/streamblocks/actormachine/pkg/strategy"
)

// Description sources understood by NewCompiler.
const (
	SourceLoam = "loam" // Markdown documents with frontmatter (and plain YAML/JSON)
	SourceFile = "file" // Directory of YAML/JSON descriptions, watched with fsnotify
)

// Options are the settings shared by every amc command.
type Options struct {
	Dir      string
	Debug    bool
	Strategy strategy.Kind
	Source   string

	// Redis is the address of a controller cache. Empty disables caching.
	Redis string

	// Evaluator is the path of a process evaluator config. Empty selects Lua.
	Evaluator string
}

// ParseInputs turns "port=v1,v2" flags into token lists. Values are decoded as
// YAML scalars, so numbers and booleans keep their type. Repeating a port
// appends to its FIFO.
func ParseInputs(args []string) (map[string][]any, error) {
	out := make(map[string][]any)
	for _, arg := range args {
		port, values, ok := strings.Cut(arg, "=")
		port = strings.TrimSpace(port)
		if !ok || port == "" {
			return nil, fmt.Errorf("invalid input %q: expected port=v1,v2", arg)
		}

		var tokens []any
		if err := yaml.Unmarshal([]byte("["+values+"]"), &tokens); err != nil {
			return nil, fmt.Errorf("invalid tokens for %s: %w", port, err)
		}
		out[port] = append(out[port], tokens...)
	}
	return out, nil
}
