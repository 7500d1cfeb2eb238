package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns deterministic vectors and records call sizes.
type fakeProvider struct {
	dims      int
	callSizes []int
	err       error

	// badAt injects a wrong-length vector at this input index (-1 disables).
	badAt int
}

func newFakeProvider(dims int) *fakeProvider {
	return &fakeProvider{dims: dims, badAt: -1}
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Dimensions() int { return f.dims }
func (f *fakeProvider) Close() error    { return nil }

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	offset := 0
	for _, n := range f.callSizes {
		offset += n
	}
	f.callSizes = append(f.callSizes, len(texts))

	out := make([][]float32, len(texts))
	for i := range texts {
		dims := f.dims
		if offset+i == f.badAt {
			dims = f.dims + 1
		}
		vec := make([]float32, dims)
		vec[0] = float32(offset + i)
		out[i] = vec
	}
	return out, nil
}

// TestEmbedBatch_SplitsLargeInput verifies inputs above the batch cap are
// split and results keep input order.
func TestEmbedBatch_SplitsLargeInput(t *testing.T) {
	provider := newFakeProvider(4)
	svc := NewServiceWithProvider(provider)

	texts := make([]string, MaxBatchSize+10)
	for i := range texts {
		texts[i] = "chunk"
	}

	results, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	assert.Equal(t, []int{MaxBatchSize, 10}, provider.callSizes)

	// First element of each vector encodes its global input index.
	for i, vec := range results {
		assert.Equal(t, float32(i), vec[0])
	}
}

// TestEmbedBatch_EmptyInput verifies an empty input is a no-op.
func TestEmbedBatch_EmptyInput(t *testing.T) {
	provider := newFakeProvider(4)
	svc := NewServiceWithProvider(provider)

	results, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, provider.callSizes)
}

// TestEmbedBatch_DimensionMismatch verifies a wrong-sized vector fails the
// whole batch with a provider error.
func TestEmbedBatch_DimensionMismatch(t *testing.T) {
	provider := newFakeProvider(4)
	provider.badAt = 2
	svc := NewServiceWithProvider(provider)

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c", "d"})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "fake", provErr.Provider)
}

// TestEmbedBatch_ProviderFailure verifies upstream errors surface unchanged.
func TestEmbedBatch_ProviderFailure(t *testing.T) {
	provider := newFakeProvider(4)
	provider.err = &ProviderError{Provider: "fake", Err: errors.New("rate limited")}
	svc := NewServiceWithProvider(provider)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
}

// shortProvider returns fewer vectors than inputs.
type shortProvider struct{}

func (shortProvider) Name() string    { return "short" }
func (shortProvider) Dimensions() int { return 4 }
func (shortProvider) Close() error    { return nil }

func (shortProvider) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, nil
}

// TestEmbedBatch_CountMismatch verifies a provider returning the wrong
// number of vectors is a provider error, never a panic downstream.
func TestEmbedBatch_CountMismatch(t *testing.T) {
	svc := NewServiceWithProvider(shortProvider{})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "short", provErr.Provider)

	_, err = svc.EmbedQuery(context.Background(), "single query")
	require.ErrorAs(t, err, &provErr)
}

// TestEmbedQuery delegates to the batch path and unwraps the single result.
func TestEmbedQuery(t *testing.T) {
	provider := newFakeProvider(4)
	svc := NewServiceWithProvider(provider)

	vec, err := svc.EmbedQuery(context.Background(), "where is the deed")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
	assert.Equal(t, []int{1}, provider.callSizes)
}
