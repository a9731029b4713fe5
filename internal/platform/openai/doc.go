// Package openai implements the classify.Agent interface using the OpenAI
// chat completions API to classify memo text into task drafts.
//
// Models occasionally wrap the JSON object in code fences or prose despite
// the prompt's instructions, so the adapter extracts the first JSON object
// from the completion text before decoding it.
package openai
