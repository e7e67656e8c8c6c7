package rag_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"secbrief/internal/llm"
	llmmocks "secbrief/internal/llm/mocks"
	"secbrief/internal/rag"
	"secbrief/internal/service"
	"secbrief/internal/storage"
	storagemocks "secbrief/internal/storage/mocks"
	"secbrief/internal/vectorstore"
	vsmocks "secbrief/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	// Discard log output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const testCollection = "research_chunks"

type engineMocks struct {
	embedder  *llmmocks.MockEmbedder
	chat      *llmmocks.MockChatClient
	store     *vsmocks.MockVectorStore
	chunkRepo *storagemocks.MockChunkStore
}

func newTestEngine(t *testing.T) (rag.Engine, engineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := engineMocks{
		embedder:  llmmocks.NewMockEmbedder(ctrl),
		chat:      llmmocks.NewMockChatClient(ctrl),
		store:     vsmocks.NewMockVectorStore(ctrl),
		chunkRepo: storagemocks.NewMockChunkStore(ctrl),
	}

	engine := rag.NewEngine(m.embedder, m.chat, m.store, testCollection, m.chunkRepo)
	return engine, m
}

func searchHit(chunkID, title, company, url string, score float32) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		PointID: "point-" + chunkID,
		Score:   score,
		Meta: map[string]any{
			"chunk_id": chunkID,
			"title":    title,
			"company":  company,
			"url":      url,
		},
	}
}

func TestEngine_Ask(t *testing.T) {
	engine, m := newTestEngine(t)
	ctx := context.Background()

	queryVec := [][]float32{{0.1, 0.2, 0.3}}

	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), []string{"What is the new Okta phishing campaign?"}).
		Return(queryVec, nil)

	m.store.EXPECT().
		Search(gomock.Any(), testCollection, queryVec[0], 5, gomock.Any()).
		Return([]vectorstore.SearchResult{
			searchHit("abc12345_chunk_1", "Phishing Campaign Analysis", "okta", "https://okta.example/blog/1", 0.92),
			searchHit("def67890_chunk_2", "Unrelated Advisory", "mandiant", "https://mandiant.example/blog/2", 0.55),
		}, nil)

	m.chunkRepo.EXPECT().
		GetByID(gomock.Any(), "abc12345_chunk_1").
		Return(&storage.ChunkRecord{
			ID:         "abc12345_chunk_1",
			DocumentID: "doc-1",
			Text:       "Attackers registered lookalike domains targeting Okta tenants.",
		}, nil)
	m.chunkRepo.EXPECT().
		GetByID(gomock.Any(), "def67890_chunk_2").
		Return(&storage.ChunkRecord{
			ID:         "def67890_chunk_2",
			DocumentID: "doc-2",
			Text:       "General advisory content.",
		}, nil)

	m.chat.EXPECT().
		Chat(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.ChatMessage) (string, error) {
			if len(messages) != 2 {
				t.Fatalf("expected system + user messages, got %d", len(messages))
			}
			user, _ := messages[1].Content.(string)
			if !strings.Contains(user, "[1] Phishing Campaign Analysis - okta") {
				t.Errorf("user message missing numbered citation header:\n%s", user)
			}
			if !strings.Contains(user, "lookalike domains") {
				t.Errorf("user message missing chunk text")
			}
			return "The campaign uses lookalike domains [1].", nil
		})

	resp, err := engine.Ask(ctx, rag.AskRequest{Question: "What is the new Okta phishing campaign?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if resp.Answer != "The campaign uses lookalike domains [1]." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if len(resp.References) != 2 {
		t.Fatalf("References count = %d, want 2", len(resp.References))
	}
	if resp.References[0].ChunkID != "abc12345_chunk_1" {
		t.Errorf("first reference = %q, want highest scored chunk first", resp.References[0].ChunkID)
	}
	if resp.References[0].URL != "https://okta.example/blog/1" {
		t.Errorf("first reference URL = %q", resp.References[0].URL)
	}
}

func TestEngine_Ask_EmptyQuestion(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Ask(context.Background(), rag.AskRequest{Question: "   "})
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Ask() error = %v, want ErrInvalidInput", err)
	}
}

func TestEngine_Ask_NoResults(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 5, gomock.Any()).
		Return(nil, nil)

	resp, err := engine.Ask(context.Background(), rag.AskRequest{Question: "obscure question"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(resp.Answer, "couldn't find") {
		t.Errorf("Answer = %q, want no-results message", resp.Answer)
	}
	if len(resp.References) != 0 {
		t.Errorf("References = %v, want empty", resp.References)
	}
}

func TestEngine_Ask_CompanyFilter(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 5, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []float32, _ int, filters map[string]any) ([]vectorstore.SearchResult, error) {
			companies, ok := filters["company"].([]string)
			if !ok || len(companies) != 2 {
				t.Errorf("company filter = %v, want two companies", filters["company"])
			}
			return nil, nil
		})

	_, err := engine.Ask(context.Background(), rag.AskRequest{
		Question:  "question",
		Companies: []string{"okta", "crowdstrike"},
	})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
}

func TestEngine_Ask_EmbedError(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("service unavailable"))

	_, err := engine.Ask(context.Background(), rag.AskRequest{Question: "question"})
	if err == nil || !strings.Contains(err.Error(), "failed to embed query") {
		t.Errorf("Ask() error = %v, want embed failure", err)
	}
}

func TestEngine_Ask_SkipsUnresolvableChunks(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 5, gomock.Any()).
		Return([]vectorstore.SearchResult{
			searchHit("missing_chunk_1", "Gone", "okta", "https://okta.example/gone", 0.9),
			searchHit("live_chunk_1", "Live", "okta", "https://okta.example/live", 0.8),
		}, nil)

	m.chunkRepo.EXPECT().
		GetByID(gomock.Any(), "missing_chunk_1").
		Return(nil, storage.ErrNotFound)
	m.chunkRepo.EXPECT().
		GetByID(gomock.Any(), "live_chunk_1").
		Return(&storage.ChunkRecord{ID: "live_chunk_1", DocumentID: "doc", Text: "text"}, nil)

	m.chat.EXPECT().
		Chat(gomock.Any(), gomock.Any()).
		Return("answer", nil)

	resp, err := engine.Ask(context.Background(), rag.AskRequest{Question: "question"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(resp.References) != 1 || resp.References[0].ChunkID != "live_chunk_1" {
		t.Errorf("References = %v, want only the resolvable chunk", resp.References)
	}
}

func TestEngine_Search(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), []string{"supply chain"}).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 3, gomock.Any()).
		Return([]vectorstore.SearchResult{
			searchHit("ch_chunk_1", "Supply Chain Report", "paloalto", "https://pa.example/1", 0.7),
		}, nil)
	m.chunkRepo.EXPECT().
		GetByID(gomock.Any(), "ch_chunk_1").
		Return(&storage.ChunkRecord{
			ID:           "ch_chunk_1",
			DocumentID:   "doc-7",
			Text:         "plain",
			EnrichedText: "enriched supply chain text",
		}, nil)

	resp, err := engine.Search(context.Background(), rag.SearchRequest{Query: "supply chain", K: 3})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("Results count = %d, want 1", len(resp.Results))
	}
	got := resp.Results[0]
	if got.Text != "enriched supply chain text" {
		t.Errorf("Text = %q, want enriched text preferred", got.Text)
	}
	if got.DocumentID != "doc-7" || got.Company != "paloalto" {
		t.Errorf("result metadata = %+v", got)
	}
}

func TestEngine_Search_EmptyQuery(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Search(context.Background(), rag.SearchRequest{Query: ""})
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("Search() error = %v, want ErrInvalidInput", err)
	}
}

func TestEngine_Ask_KClamped(t *testing.T) {
	engine, m := newTestEngine(t)

	m.embedder.EXPECT().
		EmbedTexts(gomock.Any(), gomock.Any()).
		Return([][]float32{{0.1}}, nil)
	m.store.EXPECT().
		Search(gomock.Any(), testCollection, gomock.Any(), 20, gomock.Any()).
		Return(nil, nil)

	_, err := engine.Ask(context.Background(), rag.AskRequest{Question: "question", K: 100})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
}
