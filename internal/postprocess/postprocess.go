// Package postprocess rewrites an existing summary with a single completion.
package postprocess

import (
	"context"
	"fmt"
	"strings"

	"docsum/internal/domain"
	"docsum/internal/prompt"
)

// Operation is a post-processing transformation.
type Operation int

const (
	Simplify Operation = iota
	Shorten
	Rephrase
	Expand
	opCount
)

var opModes = [opCount]string{
	Simplify: prompt.ModeSimplify,
	Shorten:  prompt.ModeShorten,
	Rephrase: prompt.ModeRephrase,
	Expand:   prompt.ModeExpand,
}

func (o Operation) String() string {
	if o < 0 || o >= opCount {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return opModes[o]
}

// Operations lists every operation in declaration order.
func Operations() []Operation {
	return []Operation{Simplify, Shorten, Rephrase, Expand}
}

// ParseOperation resolves an operation name case-insensitively.
func ParseOperation(s string) (Operation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for op, mode := range opModes {
		if mode == name {
			return Operation(op), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, s)
}

// Processor applies operations, audience adjustments and visualizations.
type Processor struct {
	completer domain.Completer
	prompts   prompt.Resolver
}

// New verifies that every operation mode resolves.
func New(c domain.Completer, r prompt.Resolver) (*Processor, error) {
	if err := prompt.RequireModes(r, opModes[:]...); err != nil {
		return nil, err
	}
	return &Processor{completer: c, prompts: r}, nil
}

func (p *Processor) Process(ctx context.Context, text string, op Operation) (string, error) {
	if op < 0 || op >= opCount {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownOperation, op)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyInput
	}
	return p.generate(ctx, opModes[op], map[string]string{"text": text})
}

// Visualize turns a summary into Mermaid flowchart source.
func (p *Processor) Visualize(ctx context.Context, summary string) (string, error) {
	if strings.TrimSpace(summary) == "" {
		return "", domain.ErrEmptyInput
	}
	return p.generate(ctx, prompt.ModeVisualization, map[string]string{"summary": summary})
}

func (p *Processor) generate(ctx context.Context, mode string, fields map[string]string) (string, error) {
	tpl, err := p.prompts.Resolve(mode)
	if err != nil {
		return "", err
	}
	rendered, err := tpl.Render(fields)
	if err != nil {
		return "", err
	}
	out, err := p.completer.Complete(ctx, rendered)
	if err != nil {
		return "", domain.AsCompletionError(providerName(p.completer), err)
	}
	return out, nil
}

func providerName(c domain.Completer) string {
	if n, ok := c.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
