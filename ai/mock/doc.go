// Package mock provides test doubles for the ai package interfaces.
//
// The default behavior is deterministic: the same text always produces the
// same unit-norm vector, so tests can assert on ranking without a live
// embedding service. Behavior can be overridden per test via function fields.
package mock
