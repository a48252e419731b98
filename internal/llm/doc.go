// Package llm sends prompts to hosted text-generation APIs (Gemini, OpenAI,
// Anthropic) and classifies every failure into a Kind: HTTP status, transport
// errors, and responses that carry no text because generation was truncated
// or filtered.
package llm
