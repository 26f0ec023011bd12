// Package openai implements the ai interfaces against OpenAI-compatible
// embedding APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// The implementation uses langchaingo's OpenAI client and embedder wrapper.
// Requests are retried with exponential backoff and bounded by the timeout
// from ai.Config. Embedding failures are reported as core.ErrEmbedding so
// callers can classify them without knowing the transport.
package openai
