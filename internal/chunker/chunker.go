package chunker

import (
	"fmt"
	"iter"

	"github.com/verdara/siteops/pkg/types"
)

const (
	// DefaultSize is the chunk window size in characters.
	DefaultSize = 1200

	// DefaultOverlap is the number of trailing characters each chunk
	// shares with the next one.
	DefaultOverlap = 200
)

// Chunker produces overlapping fixed-size windows over a text.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. The overlap must be smaller than the window size;
// otherwise the window offset would never advance.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d must be positive", types.ErrBadChunkConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must be non-negative", types.ErrBadChunkConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d >= size %d", types.ErrBadChunkConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// NewDefault creates a Chunker with the default window and overlap.
func NewDefault() *Chunker {
	c, _ := New(DefaultSize, DefaultOverlap)
	return c
}

// Size returns the configured window size.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split returns a lazy, restartable sequence of chunk texts. Empty input
// yields no chunks.
func (c *Chunker) Split(text string) iter.Seq[string] {
	step := c.size - c.overlap
	return func(yield func(string) bool) {
		for off := 0; off < len(text); off += step {
			end := off + c.size
			if end > len(text) {
				end = len(text)
			}
			if !yield(text[off:end]) {
				return
			}
		}
	}
}

// Chunks collects Split into a slice.
func (c *Chunker) Chunks(text string) []string {
	var out []string
	for piece := range c.Split(text) {
		out = append(out, piece)
	}
	return out
}

// Count returns the number of chunks Split would produce without
// materializing them.
func (c *Chunker) Count(text string) int {
	if len(text) == 0 {
		return 0
	}
	step := c.size - c.overlap
	return (len(text) + step - 1) / step
}
