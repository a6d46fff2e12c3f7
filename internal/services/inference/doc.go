// Package inference is the HTTP client for the detection, OCR, and
// diarization model service.
package inference
