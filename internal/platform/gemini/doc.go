// Package gemini implements the classify.Agent interface using Google's
// Gemini API to classify memo text into task drafts.
//
// The adapter renders the classification prompt, calls the API with
// exponential backoff retry for transient failures, and parses the
// structured JSON response. Permanent errors such as safety blocks or
// malformed responses are returned immediately without retrying.
package gemini
