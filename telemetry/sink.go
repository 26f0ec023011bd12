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

import "sync"

// Sink receives telemetry events from the engine. Implementations must be
// thread-safe and must never fail the operation that emitted the event;
// a sink that cannot record an event drops it.
type Sink interface {
	// PipelineStep records one completed ingestion or retrieval step.
	PipelineStep(event StepEvent)

	// EmbeddingCreated records one corpus embedding pass.
	EmbeddingCreated(event EmbeddingEvent)
}

// NopSink discards all events. It is the default when no sink is configured.
type NopSink struct{}

func (NopSink) PipelineStep(StepEvent)          {}
func (NopSink) EmbeddingCreated(EmbeddingEvent) {}

// MultiSink fans every event out to each wrapped sink in order.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one. Nil entries are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	kept := make([]Sink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return &MultiSink{sinks: kept}
}

func (m *MultiSink) PipelineStep(event StepEvent) {
	for _, sink := range m.sinks {
		sink.PipelineStep(event)
	}
}

func (m *MultiSink) EmbeddingCreated(event EmbeddingEvent) {
	for _, sink := range m.sinks {
		sink.EmbeddingCreated(event)
	}
}

// CaptureSink records events in memory for test assertions.
type CaptureSink struct {
	mu         sync.Mutex
	steps      []StepEvent
	embeddings []EmbeddingEvent
}

// NewCaptureSink creates an empty capture sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

func (c *CaptureSink) PipelineStep(event StepEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, event)
}

func (c *CaptureSink) EmbeddingCreated(event EmbeddingEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddings = append(c.embeddings, event)
}

// Steps returns a copy of the recorded step events.
func (c *CaptureSink) Steps() []StepEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StepEvent, len(c.steps))
	copy(out, c.steps)
	return out
}

// Embeddings returns a copy of the recorded embedding events.
func (c *CaptureSink) Embeddings() []EmbeddingEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EmbeddingEvent, len(c.embeddings))
	copy(out, c.embeddings)
	return out
}
