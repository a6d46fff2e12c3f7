// Package whisperx shells out to the WhisperX speech-to-text tool and parses
// its JSON transcripts.
package whisperx
