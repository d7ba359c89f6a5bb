package postprocess

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docsum/internal/domain"
	"docsum/internal/prompt"
)

const (
	DefaultAudience = "general"
	DefaultStyle    = "concise"
)

var audiences = map[string]string{
	"general":  "a general audience, using clear language that anyone can follow",
	"experts":  "domain experts, using precise technical terminology",
	"students": "students, explaining key concepts and terms along the way",
}

var styles = map[string]string{
	"concise":       "a concise style with short sentences",
	"detailed":      "a detailed style that keeps supporting facts and figures",
	"bullet_points": "a bulleted list with one key point per line",
}

// Audiences returns the supported audience names, sorted.
func Audiences() []string { return keys(audiences) }

// Styles returns the supported style names, sorted.
func Styles() []string { return keys(styles) }

// Adjust rewrites a summary for an audience and style. The default pair
// (general, concise) returns the text unchanged without a completion.
func (p *Processor) Adjust(ctx context.Context, text, audience, style string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyInput
	}
	if audience == "" {
		audience = DefaultAudience
	}
	if style == "" {
		style = DefaultStyle
	}
	a, ok := audiences[audience]
	if !ok {
		return "", fmt.Errorf("unknown audience %q (want one of %s)", audience, strings.Join(Audiences(), ", "))
	}
	s, ok := styles[style]
	if !ok {
		return "", fmt.Errorf("unknown style %q (want one of %s)", style, strings.Join(Styles(), ", "))
	}
	if audience == DefaultAudience && style == DefaultStyle {
		return text, nil
	}
	return p.generate(ctx, prompt.ModeAdjust, map[string]string{"text": text, "audience": a, "style": s})
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
