// Package ffprobe wraps the ffprobe binary for container and stream
// inspection of input media files.
package ffprobe
