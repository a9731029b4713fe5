// Package classify defines the boundary between the job queue and the
// memo classifiers. It holds the Agent interface, the wire schema shared by
// the LLM-backed providers, the acceptance rules applied to every result
// before persistence, and a deterministic rule-based classifier used when
// no provider is configured.
package classify
