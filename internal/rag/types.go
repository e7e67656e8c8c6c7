package rag

// AskRequest represents a retrieval-augmented query.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// Companies restricts retrieval to specific vendors. If empty, all
	// companies are searched.
	Companies []string `json:"companies,omitempty"`
	// K is the desired chunk count. Defaults to 5, capped at 20.
	K int `json:"k,omitempty"`
}

// Reference is one retrieved chunk that contributed to the answer.
type Reference struct {
	// ChunkID is the stable chunk identifier.
	ChunkID string `json:"chunk_id"`
	// Title is the source article title.
	Title string `json:"title"`
	// Company is the vendor that published the article.
	Company string `json:"company"`
	// URL is the source article URL.
	URL string `json:"url"`
	// Score is the blended relevance score.
	Score float32 `json:"score"`
}

// AskResponse represents the response to a retrieval-augmented query.
type AskResponse struct {
	// Answer is the generated answer from the LLM.
	Answer string `json:"answer"`
	// References are the chunks that were used to generate the answer,
	// in citation order.
	References []Reference `json:"references"`
}

// SearchRequest represents a raw similarity search without the answer step.
type SearchRequest struct {
	Query     string   `json:"query"`
	Companies []string `json:"companies,omitempty"`
	K         int      `json:"k,omitempty"`
}

// ScoredChunk is one search hit with its stored text.
type ScoredChunk struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Company    string  `json:"company"`
	URL        string  `json:"url"`
	Score      float32 `json:"score"`
	Text       string  `json:"text"`
}

// SearchResponse represents the response to a raw similarity search.
type SearchResponse struct {
	Results []ScoredChunk `json:"results"`
}
