package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks secbrief/internal/rag Engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"secbrief/internal/contextutil"
	"secbrief/internal/llm"
	"secbrief/internal/service"
	"secbrief/internal/storage"
	"secbrief/internal/vectorstore"
)

const (
	defaultK = 5
	maxK     = 20
)

// Engine provides retrieval-augmented question answering over indexed
// research articles.
type Engine interface {
	// Ask answers a question by retrieving relevant chunks and generating
	// an answer with citations.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// Search returns raw scored chunks for a query without the answer step.
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    llm.Embedder
	chatClient  llm.ChatClient
	vectorStore vectorstore.VectorStore
	collection  string
	chunkRepo   storage.ChunkStore
	logger      *slog.Logger
}

// NewEngine creates a new retrieval engine.
func NewEngine(
	embedder llm.Embedder,
	chatClient llm.ChatClient,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkRepo storage.ChunkStore,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		chatClient:  chatClient,
		vectorStore: vectorStore,
		collection:  collection,
		chunkRepo:   chunkRepo,
		logger:      slog.Default(),
	}
}

// retrievedChunk carries one hit with its stored text resolved from the
// database.
type retrievedChunk struct {
	chunkID    string
	documentID string
	title      string
	company    string
	url        string
	score      float32
	text       string
}

// Ask answers a question using retrieval-augmented generation.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, fmt.Errorf("question is empty: %w", service.ErrInvalidInput)
	}

	k := clampK(req.K)
	logger.InfoContext(ctx, "ask started", "question_length", len(question), "companies", req.Companies, "k", k)

	chunks, err := e.retrieve(ctx, question, req.Companies, k)
	if err != nil {
		return AskResponse{}, err
	}

	if len(chunks) == 0 {
		logger.InfoContext(ctx, "no search results found")
		return AskResponse{
			Answer:     "I couldn't find any relevant research articles to answer this question.",
			References: []Reference{},
		}, nil
	}

	// Format context with numbered citations
	var contextBuilder strings.Builder
	contextBuilder.WriteString("--- Context from research articles ---\n\n")
	for i, chunk := range chunks {
		contextBuilder.WriteString(fmt.Sprintf("[%d] %s - %s (%s)\n", i+1, chunk.title, chunk.company, chunk.url))
		contextBuilder.WriteString(chunk.text)
		contextBuilder.WriteString("\n\n")
	}
	contextBuilder.WriteString("--- End Context ---")

	contextString := contextBuilder.String()
	logger.DebugContext(ctx, "context formatted for LLM", "context_length", len(contextString), "chunks_included", len(chunks))

	systemPrompt := "You are a security research assistant that answers questions based on excerpts " +
		"from vendor research and threat intelligence blogs. Answer using only the information from " +
		"the numbered context below and cite sources inline as [1], [2], etc. If the context doesn't " +
		"contain enough information to answer the question, say so."

	userMessage := fmt.Sprintf("%s\n\n%s", question, contextString)

	answer, err := e.chatClient.Chat(ctx, []llm.ChatMessage{
		llm.TextMessage("system", systemPrompt),
		llm.TextMessage("user", userMessage),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AskResponse{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	references := make([]Reference, 0, len(chunks))
	for _, chunk := range chunks {
		references = append(references, Reference{
			ChunkID: chunk.chunkID,
			Title:   chunk.title,
			Company: chunk.company,
			URL:     chunk.url,
			Score:   chunk.score,
		})
	}

	logger.InfoContext(ctx, "ask completed", "chunks_used", len(chunks), "answer_length", len(answer))

	return AskResponse{
		Answer:     answer,
		References: references,
	}, nil
}

// Search returns raw scored chunks for a query.
func (e *ragEngine) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return SearchResponse{}, fmt.Errorf("query is empty: %w", service.ErrInvalidInput)
	}

	k := clampK(req.K)
	chunks, err := e.retrieve(ctx, query, req.Companies, k)
	if err != nil {
		return SearchResponse{}, err
	}

	results := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, ScoredChunk{
			ChunkID:    chunk.chunkID,
			DocumentID: chunk.documentID,
			Title:      chunk.title,
			Company:    chunk.company,
			URL:        chunk.url,
			Score:      chunk.score,
			Text:       chunk.text,
		})
	}

	logger.InfoContext(ctx, "search completed", "query_length", len(query), "results", len(results))
	return SearchResponse{Results: results}, nil
}

// retrieve embeds the query, searches the vector store, resolves chunk
// texts from the database and returns the blended top-k chunks.
func (e *ragEngine) retrieve(ctx context.Context, query string, companies []string, k int) ([]retrievedChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	queryVector := embeddings[0]

	filters := make(map[string]any)
	if len(companies) > 0 {
		filters["company"] = companies
	}

	searchResults, err := e.vectorStore.Search(ctx, e.collection, queryVector, k, filters)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	chunks := make([]retrievedChunk, 0, len(searchResults))
	for _, result := range searchResults {
		chunkID, _ := result.Meta["chunk_id"].(string)
		if chunkID == "" {
			logger.WarnContext(ctx, "search result missing chunk_id", "point_id", result.PointID)
			continue
		}

		chunk, err := e.chunkRepo.GetByID(ctx, chunkID)
		if err != nil {
			logger.WarnContext(ctx, "failed to fetch chunk text", "chunk_id", chunkID, "error", err)
			continue
		}

		text := chunk.EnrichedText
		if text == "" {
			text = chunk.Text
		}

		title, _ := result.Meta["title"].(string)
		company, _ := result.Meta["company"].(string)
		url, _ := result.Meta["url"].(string)

		chunks = append(chunks, retrievedChunk{
			chunkID:    chunkID,
			documentID: chunk.DocumentID,
			title:      title,
			company:    company,
			url:        url,
			score:      result.Score + lexicalScore(query, text, title),
			text:       text,
		})
	}

	// Blended lexical bonus can reorder near ties, so re-sort before
	// truncating.
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].score > chunks[j].score
	})
	if len(chunks) > k {
		chunks = chunks[:k]
	}

	logger.InfoContext(ctx, "retrieval completed", "results", len(chunks), "k", k)
	return chunks, nil
}

func clampK(k int) int {
	if k <= 0 {
		return defaultK
	}
	if k > maxK {
		return maxK
	}
	return k
}
