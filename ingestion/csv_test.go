package ingestion

import (
	"strings"
	"testing"

	"github.com/poiesic/faqdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("parses rows by header name", func(t *testing.T) {
		data := "Question,Reply,Tagging\n" +
			"What courses do you offer?,Data science and analytics.,Courses Offered\n" +
			"Do you help with placement?,Yes.,Placement\n"

		rows, err := ReadCSV(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "What courses do you offer?", rows[0].Question)
		assert.Equal(t, "Data science and analytics.", rows[0].Reply)
		assert.Equal(t, "Courses Offered", rows[0].Tag)
	})

	t.Run("column order is not significant", func(t *testing.T) {
		data := "Tagging,Reply,Question\nPlacement,Yes.,Do you help with placement?\n"

		rows, err := ReadCSV(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Do you help with placement?", rows[0].Question)
		assert.Equal(t, "Placement", rows[0].Tag)
	})

	t.Run("tag column is optional", func(t *testing.T) {
		data := "Question,Reply\nQ?,A.\n"

		rows, err := ReadCSV(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].Tag)
	})

	t.Run("short rows are padded", func(t *testing.T) {
		data := "Question,Reply,Tagging\nQ?,A.\n"

		rows, err := ReadCSV(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "A.", rows[0].Reply)
		assert.Empty(t, rows[0].Tag)
	})

	t.Run("missing question column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("Reply,Tagging\nA.,Placement\n"))
		assert.ErrorIs(t, err, core.ErrIngestion)
	})

	t.Run("missing reply column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("Question,Tagging\nQ?,Placement\n"))
		assert.ErrorIs(t, err, core.ErrIngestion)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, core.ErrIngestion)
	})
}

func TestReadCSVFile_Missing(t *testing.T) {
	_, err := ReadCSVFile("/nonexistent/faq.csv")
	assert.ErrorIs(t, err, core.ErrIngestion)
}
