// Package summarizer implements the summarization strategies behind one
// contract: Summarize(ctx, text) returns a summary or the error that stopped it.
// No strategy returns a partial result.
package summarizer

import (
	"context"
	"regexp"
	"strings"

	"docsum/internal/domain"
	"docsum/internal/prompt"
)

var paragraphSep = regexp.MustCompile(`\n[ \t\r]*\n`)

// SplitParagraphs splits text on blank lines and drops empty paragraphs.
// Text without blank lines is returned as a single paragraph.
func SplitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphSep.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		if t := strings.TrimSpace(text); t != "" {
			out = []string{t}
		}
	}
	return out
}

func checkInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyInput
	}
	return nil
}

type named interface{ Name() string }

func providerName(c domain.Completer) string {
	if n, ok := c.(named); ok {
		return n.Name()
	}
	return ""
}

// generate resolves mode, renders it with fields and runs one completion.
// Prompt errors surface unchanged; completion failures become *domain.CompletionError.
func generate(ctx context.Context, c domain.Completer, r prompt.Resolver, mode string, fields map[string]string) (string, error) {
	tpl, err := r.Resolve(mode)
	if err != nil {
		return "", err
	}
	p, err := tpl.Render(fields)
	if err != nil {
		return "", err
	}
	out, err := c.Complete(ctx, p)
	if err != nil {
		return "", domain.AsCompletionError(providerName(c), err)
	}
	return out, nil
}

func generateText(ctx context.Context, c domain.Completer, r prompt.Resolver, mode, text string) (string, error) {
	return generate(ctx, c, r, mode, map[string]string{"text": text})
}
