package mock

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVectorIsStable(t *testing.T) {
	a := DeterministicVector("what courses do you offer", Dimension)
	b := DeterministicVector("what courses do you offer", Dimension)
	c := DeterministicVector("where is the campus", Dimension)

	require.Len(t, a, Dimension)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestEmbedderCallCount(t *testing.T) {
	ctx := context.Background()
	embedder := NewEmbedder()

	_, err := embedder.EmbedText(ctx, "hello")
	require.NoError(t, err)
	_, err = embedder.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.CallCount())

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())
}

func TestEmbedderConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	embedder := NewEmbedder()

	const workers = 8
	const callsPerWorker = 64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < callsPerWorker; i++ {
				text := fmt.Sprintf("worker %d question %d", w, i)
				vectors, err := embedder.EmbedTexts(ctx, []string{text})
				assert.NoError(t, err)
				assert.Len(t, vectors, 1)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, workers*callsPerWorker, embedder.CallCount())
}
