package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"docsum/internal/domain"
)

// Mode names used by the summarization core.
const (
	ModeZeroShot      = "zero_shot"
	ModeRAG           = "RAG"
	ModeMap           = "map"
	ModeReduce        = "reduce"
	ModeKeyTopics     = "key_topics"
	ModeSimplify      = "simplify"
	ModeShorten       = "shorten"
	ModeRephrase      = "rephrase"
	ModeExpand        = "expand"
	ModeQuote         = "quote"
	ModeJudgeQuote    = "judge_quote"
	ModeAdjust        = "adjust"
	ModeVisualization = "visualization"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Resolver maps a mode to its template.
type Resolver interface {
	Resolve(mode string) (*Template, error)
}

// Registry is an immutable mode -> template mapping. It is safe for concurrent use.
type Registry struct {
	templates map[string]*Template
}

// New parses the given mode -> template source mapping.
func New(sources map[string]string) (*Registry, error) {
	r := &Registry{templates: make(map[string]*Template, len(sources))}
	for mode, src := range sources {
		t, err := parseTemplate(mode, src)
		if err != nil {
			return nil, err
		}
		r.templates[mode] = t
	}
	return r, nil
}

// Default returns the registry built from the embedded prompt set.
func Default() (*Registry, error) {
	sources, err := decode(defaultPrompts)
	if err != nil {
		return nil, fmt.Errorf("embedded prompts: %w", err)
	}
	return New(sources)
}

// LoadFile overlays the prompts in path on top of the embedded defaults.
// An empty path or a missing file yields the defaults.
func LoadFile(path string) (*Registry, error) {
	sources, err := decode(defaultPrompts)
	if err != nil {
		return nil, fmt.Errorf("embedded prompts: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			overrides, err := decode(data)
			if err != nil {
				return nil, fmt.Errorf("prompts %s: %w", path, err)
			}
			for mode, src := range overrides {
				sources[mode] = src
			}
		}
	}
	return New(sources)
}

func decode(data []byte) (map[string]string, error) {
	sources := map[string]string{}
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// Resolve returns the template registered for mode.
func (r *Registry) Resolve(mode string) (*Template, error) {
	t, ok := r.templates[mode]
	if !ok {
		return nil, &domain.UnknownModeError{Mode: mode}
	}
	return t, nil
}

// Modes returns the registered mode names in sorted order.
func (r *Registry) Modes() []string {
	out := make([]string, 0, len(r.templates))
	for m := range r.templates {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// RequireModes fails with the first mode that does not resolve.
func RequireModes(r Resolver, modes ...string) error {
	for _, m := range modes {
		if _, err := r.Resolve(m); err != nil {
			return err
		}
	}
	return nil
}

// Passthrough returns a registry with the same modes as r whose templates are
// just their placeholders, so a completer receives the raw inputs. It backs
// the offline extractive provider.
func Passthrough(r *Registry) (*Registry, error) {
	sources := make(map[string]string, len(r.templates))
	for mode, t := range r.templates {
		parts := make([]string, len(t.fields))
		for i, f := range t.fields {
			parts[i] = "{" + f + "}"
		}
		sources[mode] = strings.Join(parts, "\n\n")
	}
	return New(sources)
}
