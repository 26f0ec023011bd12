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


// Package storage provides the storage abstraction layer for faqdex.
//
// This package defines the IndexRepository interface that decouples the
// persisted index from the retrieval and ingestion logic, so different
// backends (BadgerDB, in-memory for tests) can be used interchangeably.
//
// # Architecture
//
//   - IndexRepository: manifest access, atomic rebuild, record lookup,
//     similarity queries with optional section filtering
//
// The index is read-mostly: queries never mutate state and run concurrently
// without mutual exclusion. A rebuild is the only write path and commits
// atomically; a concurrently running query observes either the prior index
// or the new one, never a mix.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific timeout
// requirements.
package storage
