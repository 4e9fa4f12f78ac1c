// If you are AI: This file defines the sticky-error taxonomy shared by the task runtime.

package task

import "errors"

// Sentinel errors reported by Pull(). Comparable with errors.Is.
var (
	ErrDummy       = errors.New("task: dummy placeholder cannot run")
	ErrStarted     = errors.New("task: already started")
	ErrDisposed    = errors.New("task: reused after stop")
	ErrInterrupted = errors.New("task: interrupted")
	ErrTerminated  = errors.New("task: terminated before cycle ran")
	ErrCreateFailed = errors.New("task: create failed")
)
