package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *Record {
	text := ComposeText("What is the fee?", "It depends on the course.")
	return &Record{
		Id:         IDFromContent(text),
		Text:       text,
		Vector:     []float32{0.6, 0.8},
		Section:    "Courses Offered",
		Question:   "What is the fee?",
		InsertedAt: time.Now().UTC(),
	}
}

func TestValidateRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		assert.NoError(t, ValidateRecord(validRecord(), 2))
	})

	t.Run("nil record", func(t *testing.T) {
		err := ValidateRecord(nil, 2)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("empty text", func(t *testing.T) {
		record := validRecord()
		record.Text = ""
		err := ValidateRecord(record, 2)
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("empty section", func(t *testing.T) {
		record := validRecord()
		record.Section = ""
		err := ValidateRecord(record, 2)
		assert.ErrorIs(t, err, ErrEmptySection)
	})

	t.Run("empty vector", func(t *testing.T) {
		record := validRecord()
		record.Vector = nil
		err := ValidateRecord(record, 2)
		assert.ErrorIs(t, err, ErrEmptyVector)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		record := validRecord()
		err := ValidateRecord(record, 3)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("zero dimension skips the check", func(t *testing.T) {
		assert.NoError(t, ValidateRecord(validRecord(), 0))
	})
}

func TestValidateQueryRequest(t *testing.T) {
	t.Run("valid request", func(t *testing.T) {
		request := &QueryRequest{QueryText: "placement support", TopK: 3}
		require.NoError(t, ValidateQueryRequest(request))
	})

	t.Run("nil request", func(t *testing.T) {
		assert.ErrorIs(t, ValidateQueryRequest(nil), ErrInvalidRequest)
	})

	t.Run("whitespace query", func(t *testing.T) {
		request := &QueryRequest{QueryText: "   \t\n", TopK: 3}
		assert.ErrorIs(t, ValidateQueryRequest(request), ErrInvalidRequest)
	})

	t.Run("zero top-k", func(t *testing.T) {
		request := &QueryRequest{QueryText: "demo classes", TopK: 0}
		assert.ErrorIs(t, ValidateQueryRequest(request), ErrInvalidRequest)
	})

	t.Run("section filter is not validated", func(t *testing.T) {
		request := &QueryRequest{QueryText: "demo classes", TopK: 1, SectionFilter: "No Such Section"}
		assert.NoError(t, ValidateQueryRequest(request))
	})
}
