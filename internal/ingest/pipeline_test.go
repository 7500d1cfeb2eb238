package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cohabitat/assistant-core/internal/embedding"
	"github.com/cohabitat/assistant-core/pkg/models"
)

const testDims = 4

// fakeProvider embeds to fixed-size vectors.
type fakeProvider struct {
	err error
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Dimensions() int { return testDims }
func (f *fakeProvider) Close() error    { return nil }

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, testDims)
	}
	return out, nil
}

// fakeDocStore is an in-memory document store.
type fakeDocStore struct {
	pending    []models.Document
	chunks     map[uuid.UUID][]models.DocumentChunk
	embedded   map[uuid.UUID]int
	statuses   map[uuid.UUID]models.DocumentStatus
	writeError error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{
		chunks:   map[uuid.UUID][]models.DocumentChunk{},
		embedded: map[uuid.UUID]int{},
		statuses: map[uuid.UUID]models.DocumentStatus{},
	}
}

func (f *fakeDocStore) GetDocument(_ context.Context, _, _ uuid.UUID) (*models.Document, error) {
	return nil, errors.New("not used")
}

func (f *fakeDocStore) ListPendingDocuments(_ context.Context, _ int) ([]models.Document, error) {
	return f.pending, nil
}

func (f *fakeDocStore) GetChunks(_ context.Context, documentID uuid.UUID) ([]models.DocumentChunk, error) {
	return f.chunks[documentID], nil
}

func (f *fakeDocStore) CreateDocument(_ context.Context, _ *models.Document, _ []models.DocumentChunk) error {
	return errors.New("not used")
}

func (f *fakeDocStore) SetChunkEmbedding(_ context.Context, chunkID uuid.UUID, _ []float32, tokenCount int) error {
	if f.writeError != nil {
		return f.writeError
	}
	f.embedded[chunkID] = tokenCount
	return nil
}

func (f *fakeDocStore) SetDocumentStatus(_ context.Context, documentID uuid.UUID, status models.DocumentStatus) error {
	f.statuses[documentID] = status
	return nil
}

func (f *fakeDocStore) SearchChunks(_ context.Context, _ uuid.UUID, _ []float32, _ int) ([]models.RankedChunk, error) {
	return nil, errors.New("not used")
}

func newTestPipeline(t *testing.T, store *fakeDocStore, provider *fakeProvider) *Pipeline {
	t.Helper()
	pipeline, err := NewPipeline(store, embedding.NewServiceWithProvider(provider))
	require.NoError(t, err)
	return pipeline
}

func addDocument(store *fakeDocStore, contents ...string) uuid.UUID {
	docID := uuid.New()
	chunks := make([]models.DocumentChunk, len(contents))
	for i, content := range contents {
		chunks[i] = models.DocumentChunk{ID: uuid.New(), DocumentID: docID, ChunkIndex: i, Content: content}
	}
	store.chunks[docID] = chunks
	store.pending = append(store.pending, models.Document{ID: docID, Status: models.DocumentPending})
	return docID
}

// TestProcessDocument_Success verifies every chunk gets an embedding and a
// token count, then the document turns ready.
func TestProcessDocument_Success(t *testing.T) {
	store := newFakeDocStore()
	docID := addDocument(store, "The mortgage rate is fixed at 3.1 percent.", "Early repayment carries a fee.")
	pipeline := newTestPipeline(t, store, &fakeProvider{})

	require.NoError(t, pipeline.ProcessDocument(context.Background(), docID))

	assert.Equal(t, models.DocumentReady, store.statuses[docID])
	require.Len(t, store.embedded, 2)
	for _, tokens := range store.embedded {
		assert.Greater(t, tokens, 0)
	}
}

// TestProcessDocument_EmbedFailure verifies a provider failure marks the
// document failed, never ready.
func TestProcessDocument_EmbedFailure(t *testing.T) {
	store := newFakeDocStore()
	docID := addDocument(store, "some content")
	provider := &fakeProvider{err: &embedding.ProviderError{Provider: "fake", Err: errors.New("down")}}
	pipeline := newTestPipeline(t, store, provider)

	err := pipeline.ProcessDocument(context.Background(), docID)
	require.Error(t, err)
	assert.Equal(t, models.DocumentFailed, store.statuses[docID])
	assert.Empty(t, store.embedded)
}

// TestProcessDocument_WriteFailure verifies a store failure during the vector
// writes also marks the document failed.
func TestProcessDocument_WriteFailure(t *testing.T) {
	store := newFakeDocStore()
	docID := addDocument(store, "some content")
	store.writeError = errors.New("disk full")
	pipeline := newTestPipeline(t, store, &fakeProvider{})

	err := pipeline.ProcessDocument(context.Background(), docID)
	require.Error(t, err)
	assert.Equal(t, models.DocumentFailed, store.statuses[docID])
}

// TestProcessDocument_NoChunks verifies an empty document is simply marked
// ready.
func TestProcessDocument_NoChunks(t *testing.T) {
	store := newFakeDocStore()
	docID := uuid.New()
	pipeline := newTestPipeline(t, store, &fakeProvider{})

	require.NoError(t, pipeline.ProcessDocument(context.Background(), docID))
	assert.Equal(t, models.DocumentReady, store.statuses[docID])
}

// TestProcessPending verifies the poll path embeds every pending document.
func TestProcessPending(t *testing.T) {
	store := newFakeDocStore()
	first := addDocument(store, "chunk one")
	second := addDocument(store, "chunk two", "chunk three")
	pipeline := newTestPipeline(t, store, &fakeProvider{})

	require.NoError(t, pipeline.processPending(context.Background()))
	assert.Equal(t, models.DocumentReady, store.statuses[first])
	assert.Equal(t, models.DocumentReady, store.statuses[second])
	assert.Len(t, store.embedded, 3)
}
