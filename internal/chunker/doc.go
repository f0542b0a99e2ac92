// Package chunker splits cleaned document text into overlapping fixed-size
// windows for embedding.
//
// Chunking is purely positional: the splitter has no notion of sentences or
// paragraphs. Starting at offset 0 it emits text[offset : offset+size], then
// advances the offset by size-overlap, until the offset passes the end of
// the text. The final chunk may be shorter than the window size.
//
// Offsets are byte offsets, so a window boundary can land inside a
// multi-byte UTF-8 sequence. That split rune reappears whole in the next
// chunk whenever the overlap covers it, and embedding providers tolerate
// the stray bytes at the edges; cache validity only needs the chunking to
// be deterministic for a given size and overlap, which byte offsets are.
//
//	c, err := chunker.New(1200, 200)
//	for piece := range c.Split(text) {
//	    // embed piece
//	}
//
// Split returns an iter.Seq, so chunk texts are produced lazily and the
// sequence can be ranged over more than once. An overlap greater than or
// equal to the window size would never advance the offset; New rejects it
// up front rather than letting Split loop forever.
package chunker
