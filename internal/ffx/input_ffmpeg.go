//go:build ffmpeg
// +build ffmpeg

// If you are AI: This file provides FFmpeg input operations via cgo.
// Input operations read media from URLs or files.

package ffx

import (
	"errors"
)

// Input represents an FFmpeg input context.
// Manages libavformat input context.
type Input struct {
	url string
	// NOTE: Full implementation would include C pointers to AVFormatContext
}

// NewInput creates a new input context for reading from a URL.
// Allocation: Creates input structure, allocates C resources.
func NewInput(url string) (*Input, error) {
	if !initialized {
		return nil, ErrFFmpegInitFailed
	}

	// NOTE: Full implementation would:
	// 1. Allocate AVFormatContext
	// 2. Call avformat_open_input()
	// 3. Call avformat_find_stream_info()
	// 4. Handle errors and cleanup

	return &Input{url: url}, nil
}

// Close closes the input context and frees resources.
// All C allocations must be freed here.
func (in *Input) Close() error {
	if in == nil {
		return nil
	}

	// NOTE: Full implementation would:
	// 1. Call avformat_close_input()
	// 2. Free all allocated C structures

	return nil
}

// ReadPacket reads a packet from the input stream.
// Returns packet data or error.
// Allocation: Allocates packet buffer, must be freed by caller.
func (in *Input) ReadPacket() ([]byte, error) {
	if in == nil {
		return nil, errors.New("input is nil")
	}

	// NOTE: Full implementation would:
	// 1. Allocate AVPacket
	// 2. Call av_read_frame()
	// 3. Copy packet data to Go slice
	// 4. Free AVPacket
	// 5. Return data

	return nil, errors.New("not implemented")
}
