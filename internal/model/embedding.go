package model

type NoteEmbedding struct {
	ID             string    `json:"id"`
	NoteID         string    `json:"note_id"`
	ChunkIndex     int       `json:"chunk_index"`
	Content        string    `json:"content"`
	Embedding      []float32 `json:"embedding"`
	EmbeddingModel string    `json:"embedding_model"`
	CreatedAt      int64     `json:"created_at"`
}

// SimilarityResult is computed per query and never persisted. Similarity is
// 1 - cosine distance, in [0,1] with 1 meaning identical direction.
type SimilarityResult struct {
	Content    string  `json:"content"`
	NoteID     string  `json:"note_id"`
	NoteTitle  string  `json:"note_title"`
	Similarity float64 `json:"similarity"`
}
