// Package ffmpeg wraps the ffmpeg binary for audio extraction, keyframe
// selection, and scene-change detection.
package ffmpeg
