package chunker

import (
	"fmt"
	"strings"

	"docsum/internal/domain"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// SplitWords splits text on whitespace into windows of up to size words.
// Windows start at word offsets 0, size-overlap, 2*(size-overlap), ... until
// the offset reaches the word count; the last window may be shorter.
// Text without words yields an empty result.
func SplitWords(text string, size, overlap int) ([]string, error) {
	chunks, err := splitWords(text, size, overlap)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out, nil
}

func splitWords(text string, size, overlap int) ([]domain.Chunk, error) {
	if err := Validate(size, overlap); err != nil {
		return nil, err
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	step := size - overlap
	chunks := make([]domain.Chunk, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := min(start+size, len(words))
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Start: start,
			Text:  strings.Join(words[start:end], " "),
		})
	}
	return chunks, nil
}

// Validate checks size > overlap >= 0.
func Validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d must be positive", domain.ErrInvalidChunking, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap %d must not be negative", domain.ErrInvalidChunking, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: overlap %d must be smaller than size %d", domain.ErrInvalidChunking, overlap, size)
	}
	return nil
}

// WordChunker splits text into overlapping fixed-size word windows.
type WordChunker struct {
	size    int
	overlap int
}

// NewWordChunker validates the window parameters up front.
func NewWordChunker(size, overlap int) (*WordChunker, error) {
	if err := Validate(size, overlap); err != nil {
		return nil, err
	}
	return &WordChunker{size: size, overlap: overlap}, nil
}

// Size returns the window length in words.
func (c *WordChunker) Size() int { return c.size }

// Overlap returns the number of words shared by neighbouring windows.
func (c *WordChunker) Overlap() int { return c.overlap }

func (c *WordChunker) Chunk(text string) ([]domain.Chunk, error) {
	return splitWords(text, c.size, c.overlap)
}
