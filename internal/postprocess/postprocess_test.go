package postprocess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docsum/internal/domain"
	"docsum/internal/prompt"
	"docsum/internal/testutil"
)

type namedCompleter struct {
	*testutil.Completer
	name string
}

func (c namedCompleter) Name() string { return c.name }

func newProcessor(t *testing.T, c domain.Completer) *Processor {
	t.Helper()
	reg, err := prompt.Default()
	require.NoError(t, err)
	p, err := New(c, reg)
	require.NoError(t, err)
	return p
}

func TestParseOperation(t *testing.T) {
	for _, op := range Operations() {
		got, err := ParseOperation(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	got, err := ParseOperation(" SHORTEN ")
	require.NoError(t, err)
	assert.Equal(t, Shorten, got)

	_, err = ParseOperation("translate")
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)
}

func TestProcessor_Process(t *testing.T) {
	t.Run("Should resolve the mode named after the operation", func(t *testing.T) {
		reg, err := prompt.New(map[string]string{
			"simplify": "S:{text}", "shorten": "H:{text}", "rephrase": "R:{text}", "expand": "E:{text}",
		})
		require.NoError(t, err)
		stub := testutil.Echo("")
		p, err := New(stub, reg)
		require.NoError(t, err)

		want := map[Operation]string{Simplify: "S:x", Shorten: "H:x", Rephrase: "R:x", Expand: "E:x"}
		for op, wantOut := range want {
			out, err := p.Process(t.Context(), "x", op)
			require.NoError(t, err)
			assert.Equal(t, wantOut, out)
		}
		assert.Equal(t, 4, stub.Calls())
	})

	t.Run("Should reject blank text without a completion", func(t *testing.T) {
		stub := testutil.Echo("")
		_, err := newProcessor(t, stub).Process(t.Context(), " \n", Expand)
		assert.ErrorIs(t, err, domain.ErrEmptyInput)
		assert.Zero(t, stub.Calls())
	})

	t.Run("Should reject unknown operations", func(t *testing.T) {
		_, err := newProcessor(t, testutil.Echo("")).Process(t.Context(), "x", Operation(9))
		assert.ErrorIs(t, err, domain.ErrUnknownOperation)
	})

	t.Run("Should surface completion failures", func(t *testing.T) {
		_, err := newProcessor(t, testutil.Failing(errors.New("down"))).Process(t.Context(), "x", Simplify)
		assert.ErrorIs(t, err, domain.ErrCompletion)
	})

	t.Run("Should name the provider in completion failures", func(t *testing.T) {
		c := namedCompleter{Completer: testutil.Failing(errors.New("down")), name: "perplexity"}
		_, err := newProcessor(t, c).Process(t.Context(), "x", Shorten)
		var ce *domain.CompletionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "perplexity", ce.Provider)
	})

	t.Run("Should fail construction when a mode is missing", func(t *testing.T) {
		reg, err := prompt.New(map[string]string{"simplify": "{text}"})
		require.NoError(t, err)
		_, err = New(testutil.Echo(""), reg)
		assert.ErrorIs(t, err, domain.ErrUnknownMode)
	})
}

func TestProcessor_Adjust(t *testing.T) {
	t.Run("Should return the text unchanged for the default pair", func(t *testing.T) {
		stub := testutil.Echo("")
		out, err := newProcessor(t, stub).Adjust(t.Context(), "summary", "", "")
		require.NoError(t, err)
		assert.Equal(t, "summary", out)
		assert.Zero(t, stub.Calls())
	})

	t.Run("Should describe audience and style in the prompt", func(t *testing.T) {
		stub := testutil.Echo("")
		_, err := newProcessor(t, stub).Adjust(t.Context(), "summary", "experts", "bullet_points")
		require.NoError(t, err)
		assert.Contains(t, stub.Last(), "domain experts")
		assert.Contains(t, stub.Last(), "bulleted list")
		assert.Contains(t, stub.Last(), "summary")
	})

	t.Run("Should reject unknown choices", func(t *testing.T) {
		p := newProcessor(t, testutil.Echo(""))
		_, err := p.Adjust(t.Context(), "s", "children", "concise")
		assert.Error(t, err)
		_, err = p.Adjust(t.Context(), "s", "general", "haiku")
		assert.Error(t, err)
	})

	t.Run("Should list choices sorted", func(t *testing.T) {
		assert.Equal(t, []string{"experts", "general", "students"}, Audiences())
		assert.Equal(t, []string{"bullet_points", "concise", "detailed"}, Styles())
	})
}

func TestProcessor_Visualize(t *testing.T) {
	stub := testutil.Fixed("flowchart TD\n  A-->B")
	p := newProcessor(t, stub)

	out, err := p.Visualize(t.Context(), "A leads to B.")
	require.NoError(t, err)
	assert.Contains(t, out, "flowchart")
	assert.Contains(t, stub.Last(), "A leads to B.")

	_, err = p.Visualize(t.Context(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}
