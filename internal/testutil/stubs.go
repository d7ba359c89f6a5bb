// Package testutil provides deterministic collaborators for tests.
package testutil

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"

	"docsum/internal/domain"
)

// Completer is a call-counting completion stub.
type Completer struct {
	mu      sync.Mutex
	fn      func(ctx context.Context, prompt string) (string, error)
	prompts []string
}

var _ domain.Completer = (*Completer)(nil)

func NewCompleter(fn func(ctx context.Context, prompt string) (string, error)) *Completer {
	return &Completer{fn: fn}
}

// Echo returns a stub that answers prefix + prompt.
func Echo(prefix string) *Completer {
	return NewCompleter(func(_ context.Context, prompt string) (string, error) {
		return prefix + prompt, nil
	})
}

// Fixed returns a stub that always answers reply.
func Fixed(reply string) *Completer {
	return NewCompleter(func(context.Context, string) (string, error) { return reply, nil })
}

// Failing returns a stub that always fails with err.
func Failing(err error) *Completer {
	return NewCompleter(func(context.Context, string) (string, error) { return "", err })
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()
	return c.fn(ctx, prompt)
}

// Calls returns the number of Complete invocations.
func (c *Completer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

// Prompts returns the prompts received, in call order.
func (c *Completer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Last returns the most recent prompt.
func (c *Completer) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

// Embedder hashes lowercased words into a fixed number of buckets.
// Texts sharing words get similar vectors.
type Embedder struct {
	Dim int
	// Err, when set, is returned by every call.
	Err error
	// Override, when set, replaces the computed vector for matching text.
	Override func(text string) []float64

	mu        sync.Mutex
	texts     []string
	batchCall int
}

var _ domain.Embedder = (*Embedder)(nil)

func NewEmbedder(dim int) *Embedder { return &Embedder{Dim: dim} }

func (e *Embedder) Name() string { return "fake" }

func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	e.texts = append(e.texts, text)
	e.mu.Unlock()
	if e.Err != nil {
		return nil, e.Err
	}
	if e.Override != nil {
		if v := e.Override(text); v != nil {
			return v, nil
		}
	}
	vec := make([]float64, e.Dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[int(h.Sum32())%e.Dim]++
	}
	return vec, nil
}

// Calls returns the number of texts embedded.
func (e *Embedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.texts)
}

// Texts returns the embedded texts in call order.
func (e *Embedder) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.texts))
	copy(out, e.texts)
	return out
}

// BatchEmbedder adds EmbedBatch to Embedder and counts batch round-trips.
type BatchEmbedder struct {
	*Embedder
}

var _ domain.BatchEmbedder = BatchEmbedder{}

func (b BatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	b.mu.Lock()
	b.batchCall++
	b.mu.Unlock()
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := b.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// BatchCalls returns the number of EmbedBatch round-trips.
func (b BatchEmbedder) BatchCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batchCall
}
