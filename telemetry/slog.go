package telemetry

import "log/slog"

// SlogSink logs events through a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink that logs events at DEBUG level, so telemetry
// stays out of normal output unless verbose logging is enabled.
// A nil logger falls back to slog.Default.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger.With("component", "telemetry")}
}

func (s *SlogSink) PipelineStep(event StepEvent) {
	s.logger.Debug("pipeline step",
		"step", event.Step,
		"user_id", event.UserID,
		"input_tokens", event.InputTokens,
		"output_tokens", event.OutputTokens,
		"section_filter", event.SectionFilter,
		"result_count", event.ResultCount,
		"elapsed", event.Elapsed)
}

func (s *SlogSink) EmbeddingCreated(event EmbeddingEvent) {
	s.logger.Debug("embeddings created",
		"model", event.Model,
		"corpus_size", event.CorpusSize,
		"elapsed", event.Elapsed)
}
