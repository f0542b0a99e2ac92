package types

// IndexDimension is the declared embedding dimension recorded in the index
// metadata. Returned vectors are not validated against it; the value exists
// so consumers of the index file know what to allocate.
const IndexDimension = 1536

// Chunk is a bounded-length slice of a document's extracted text together
// with its embedding vector. IDs are assigned from a single counter per
// ingestion run (c1, c2, ...) and are stable only within that run.
type Chunk struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Index is the persisted knowledge base: every chunk from every source
// document, in discovery order, plus the model that produced the vectors.
type Index struct {
	Model     string  `json:"model"`
	Dimension int     `json:"dimension"`
	Chunks    []Chunk `json:"chunks"`
}

// Validate reports structural problems with the chunk. It does not check
// embedding dimension; see IndexDimension.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return ErrEmptyChunkID
	}
	if c.Source == "" {
		return ErrEmptyChunkSource
	}
	if c.Text == "" {
		return ErrEmptyChunkText
	}
	return nil
}
