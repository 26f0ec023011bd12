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

import "errors"

// Engine error taxonomy. Callers match these with errors.Is to distinguish
// bad input, provider outages, and unusable index state.
var (
	// ErrInvalidRequest indicates bad caller input: an empty query or a
	// non-positive top-k. Never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmbedding indicates the embedding provider failed or rejected its
	// input. Retry policy belongs to the caller, not the engine.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexNotFound indicates no persisted index exists at the given path.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexCorrupt indicates the persisted index is unreadable or
	// internally inconsistent. Fatal; the engine never rebuilds silently.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrModelMismatch indicates the index was built with a different
	// embedding model than the one configured. Rebuilding is a caller decision.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrIngestion indicates an index build run was aborted. The previously
	// persisted index, if any, is untouched.
	ErrIngestion = errors.New("ingestion failed")

	// ErrInvalidRecord indicates a Record failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptySection indicates the Section field is empty.
	ErrEmptySection = errors.New("section cannot be empty")

	// ErrEmptyVector indicates the Vector field is empty.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
