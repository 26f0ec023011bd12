package telemetry

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter approximates token counts for telemetry events using the
// cl100k_base encoding. The encoding is loaded lazily on first use; if it
// cannot be loaded the counter falls back to whitespace-separated word
// counts rather than failing the operation being measured.
type TokenCounter struct {
	once     sync.Once
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter creates a token counter.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// Count returns the approximate token count of text.
func (t *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}

	t.once.Do(func() {
		encoding, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Default().Warn("token encoding unavailable, using word counts", "err", err)
			return
		}
		t.encoding = encoding
	})

	if t.encoding == nil {
		return len(strings.Fields(text))
	}
	return len(t.encoding.Encode(text, nil, nil))
}
