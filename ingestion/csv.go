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


package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/faqdex/core"
)

// Column headers recognized in FAQ source files.
const (
	columnQuestion = "Question"
	columnReply    = "Reply"
	columnTag      = "Tagging"
)

// ReadCSV parses FAQ source rows from CSV data. The first record is a header
// row; the Question and Reply columns are required, Tagging is optional.
// Column order is not significant. Rows shorter than the header are padded
// with empty fields rather than rejected, so row-level validation stays with
// the pipeline.
func ReadCSV(r io.Reader) ([]core.SourceRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: source has no header row", core.ErrIngestion)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIngestion, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	questionCol, ok := columns[columnQuestion]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q column", core.ErrIngestion, columnQuestion)
	}
	replyCol, ok := columns[columnReply]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q column", core.ErrIngestion, columnReply)
	}
	tagCol, hasTag := columns[columnTag]

	var rows []core.SourceRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", core.ErrIngestion, len(rows)+2, err)
		}

		field := func(i int) string {
			if i < len(record) {
				return record[i]
			}
			return ""
		}

		row := core.SourceRow{
			Question: field(questionCol),
			Reply:    field(replyCol),
		}
		if hasTag {
			row.Tag = field(tagCol)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadCSVFile parses FAQ source rows from a CSV file on disk.
func ReadCSVFile(path string) ([]core.SourceRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIngestion, err)
	}
	defer file.Close()

	return ReadCSV(file)
}
