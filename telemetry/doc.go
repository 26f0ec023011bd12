// Package telemetry defines the event contract the engine emits on and a set
// of sink implementations to receive those events.
//
// A Sink observes completed steps (ingestion runs, retrievals) and corpus
// embedding passes. Sinks are fire-and-forget: emitting an event never fails
// the operation that produced it. The package ships sinks for structured
// logging (SlogSink), file-backed interaction logs (FileSink), fan-out
// (MultiSink), and in-memory capture for tests (CaptureSink).
package telemetry
