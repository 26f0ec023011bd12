// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package telemetry

import (
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/poiesic/faqdex/core"
)

var stepHeader = []string{
	"timestamp", "step", "user_id", "input_text",
	"input_tokens", "output_tokens", "section_filter", "result_count", "elapsed_ms",
}

// FileSink appends step events to a CSV file and embedding events to a JSONL
// file. Files are created on first write, the CSV with a header row. Write
// failures are logged and dropped; the emitting operation is never failed.
type FileSink struct {
	mu        sync.Mutex
	stepPath  string
	embedPath string
	logger    *slog.Logger
}

// NewFileSink creates a file-backed sink. Either path may be empty to
// disable that stream.
func NewFileSink(stepPath, embedPath string) *FileSink {
	return &FileSink{
		stepPath:  stepPath,
		embedPath: embedPath,
		logger:    slog.Default().With("component", "telemetry-file"),
	}
}

func (f *FileSink) PipelineStep(event StepEvent) {
	if f.stepPath == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	row := []string{
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Step,
		event.UserID,
		event.InputText,
		strconv.Itoa(event.InputTokens),
		strconv.Itoa(event.OutputTokens),
		event.SectionFilter,
		strconv.Itoa(event.ResultCount),
		strconv.FormatInt(event.Elapsed.Milliseconds(), 10),
	}
	if err := appendCSV(f.stepPath, stepHeader, [][]string{row}); err != nil {
		f.logger.Warn("dropping step event", "path", f.stepPath, "err", err)
	}
}

func (f *FileSink) EmbeddingCreated(event EmbeddingEvent) {
	if f.embedPath == "" {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	line, err := json.Marshal(event)
	if err != nil {
		f.logger.Warn("dropping embedding event", "err", err)
		return
	}
	if err := appendLine(f.embedPath, line); err != nil {
		f.logger.Warn("dropping embedding event", "path", f.embedPath, "err", err)
	}
}

var resultsHeader = []string{"Timestamp", "Result No", "Section", "Original Question", "Answer"}

// AppendResults appends retrieval results to a CSV interaction log, one row
// per result, creating the file with a header row when absent.
func AppendResults(path string, now time.Time, results []*core.SearchResult) error {
	rows := make([][]string, 0, len(results))
	timestamp := now.UTC().Format(time.RFC3339)
	for i, result := range results {
		rows = append(rows, []string{
			timestamp,
			strconv.Itoa(i + 1),
			result.Record.Section,
			result.Record.Question,
			result.Record.Text,
		})
	}
	return appendCSV(path, resultsHeader, rows)
}

func appendCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	_, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if needHeader {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func appendLine(path string, line []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}
