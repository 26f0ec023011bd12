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


package core

import (
	"fmt"
	"strings"
)

// ValidateRecord validates a Record against the write-time rules.
//
// Validation rules:
//   - Text must not be empty
//   - Section must not be empty (ingestion substitutes SectionUncategorized)
//   - Vector must not be empty, and must match dimension when dimension > 0
//
// The section value itself is an open set: any non-empty string is accepted.
// Validating against a known section list is a caller concern.
func ValidateRecord(record *Record, dimension int) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyText)
	}

	if record.Section == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptySection)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyVector)
	}

	if dimension > 0 && len(record.Vector) != dimension {
		return fmt.Errorf("%w: vector dimension %d, index dimension %d",
			ErrInvalidRecord, len(record.Vector), dimension)
	}

	return nil
}

// ValidateQueryRequest validates a QueryRequest before any work is done.
//
// Validation rules:
//   - QueryText must not be empty after trimming whitespace
//   - TopK must be >= 1
//
// SectionFilter is not validated: unknown sections simply match nothing.
func ValidateQueryRequest(request *QueryRequest) error {
	if request == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}

	if strings.TrimSpace(request.QueryText) == "" {
		return fmt.Errorf("%w: query text is empty", ErrInvalidRequest)
	}

	if request.TopK < 1 {
		return fmt.Errorf("%w: top-k must be >= 1, got %d", ErrInvalidRequest, request.TopK)
	}

	return nil
}
