// Package embeddings is the HTTP client for the vision, text, and audio
// embedding extraction service.
package embeddings
