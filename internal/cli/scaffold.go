package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

type sample struct {
	id  string
	doc string
}

// samples seed a new library: a stateless copier and a two phase accumulator.
// They are stored verbatim so that numbers in the frontmatter stay numbers.
var samples = []sample{
	{
		id: "passthrough",
		doc: `---
name: passthrough
format: 1.0.0
ports:
  - {name: in, direction: in, type: int}
  - {name: out, direction: out, type: int, capacity: 2}
scopes:
  - name: local
    variables:
      - {name: tok, type: int}
conditions:
  - {input: in}
  - {space: out}
transitions:
  - name: copy
    guard: [0, 1]
    body:
      - {read: in, into: tok}
      - {write: out, value: tok}
---
Copies every token from in to out.
`,
	},
	{
		id: "pairsum",
		doc: `---
name: pairsum
format: 1.0.0
ports:
  - {name: in, direction: in, type: int}
  - {name: out, direction: out, type: int, capacity: 1}
scopes:
  - name: state
    persistent: true
    variables:
      - {name: sum, type: int, init: 0}
  - name: local
    variables:
      - {name: tok, type: int}
states: [first, second]
conditions:
  - {input: in}
  - {space: out}
transitions:
  - name: add
    from: first
    to: second
    guard: [0]
    body:
      - {read: in, into: tok}
      - {assign: sum, value: tok}
  - name: emit
    from: second
    to: first
    guard: [0, 1]
    body:
      - {read: in, into: tok}
      - {assign: sum, value: "sum + tok"}
      - {write: out, value: sum}
---
Adds tokens two by two and emits every partial sum.
`,
	},
}

// RunInit writes the sample actors into dir as Markdown documents with
// frontmatter. Existing actors with the same IDs are overwritten.
func RunInit(ctx context.Context, dir string, w io.Writer) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// No versioning: this is plain file generation.
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("failed to initialize loam: %w", err)
	}

	for _, s := range samples {
		if err := repo.Save(ctx, core.Document{ID: s.id + ".md", Content: s.doc}); err != nil {
			return fmt.Errorf("save %s: %w", s.id, err)
		}
		printSystemMessage(w, "Created actor '%s'.", s.id)
	}
	return nil
}
