package prompt

import (
	"fmt"
	"io"
	"regexp"

	"github.com/valyala/fasttemplate"

	"docsum/internal/domain"
)

var placeholderRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Template is a parsed prompt with named {placeholders}.
// Brace text that is not an identifier is kept literally.
type Template struct {
	mode   string
	source string
	tpl    *fasttemplate.Template
	fields []string
}

func parseTemplate(mode, source string) (*Template, error) {
	tpl, err := fasttemplate.NewTemplate(source, "{", "}")
	if err != nil {
		return nil, fmt.Errorf("parse prompt %q: %w", mode, err)
	}
	t := &Template{mode: mode, source: source, tpl: tpl}
	seen := map[string]struct{}{}
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if placeholderRe.MatchString(tag) {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				t.fields = append(t.fields, tag)
			}
		}
		return 0, nil
	})
	return t, nil
}

// Mode returns the name the template was registered under.
func (t *Template) Mode() string { return t.mode }

// Source returns the raw template text.
func (t *Template) Source() string { return t.source }

// Fields lists the placeholders in order of first appearance.
func (t *Template) Fields() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// Render substitutes every placeholder. A placeholder without a value yields
// a *domain.MissingFieldError.
func (t *Template) Render(fields map[string]string) (string, error) {
	return t.tpl.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		if !placeholderRe.MatchString(tag) {
			return io.WriteString(w, "{"+tag+"}")
		}
		v, ok := fields[tag]
		if !ok {
			return 0, &domain.MissingFieldError{Mode: t.mode, Field: tag}
		}
		return io.WriteString(w, v)
	})
}

// RenderText is a shorthand for templates whose only input is {text}.
func (t *Template) RenderText(text string) (string, error) {
	return t.Render(map[string]string{"text": text})
}
