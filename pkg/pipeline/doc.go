// Package pipeline runs typed processing stages connected by channels.
//
// A pipeline starts from a root step (or an externally fed channel), chains
// one-to-one and one-to-many steps, and ends in sinks. Each step runs in its own
// goroutines, optionally with several concurrent workers, and closes its output once
// its input is drained. The first error from any step cancels the pipeline context;
// Run waits for every step to exit before returning it.
//
// Pipeline options (see the model package) observe step creation and every element
// flowing through, which is how the measure and drawer subpackages are built.
package pipeline
