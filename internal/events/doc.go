// Package events provides the completion-notification mechanism for the
// memo pipeline. The queue publishes a JobCompletedEvent when a job reaches
// a terminal state; hosts subscribe by registering handlers on an emitter.
// Events carry the same snapshot shape callers get from polling, serialized
// as JSON so subscribers stay decoupled from the queue package.
package events
