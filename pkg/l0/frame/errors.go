package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrTransportUnderrun indicates the byte source returned fewer bytes
	// than requested, either end of stream or a read timeout.
	ErrTransportUnderrun = errors.New("transport underrun")
	// ErrSyncTimeout indicates resynchronization gave up before finding
	// a frame start.
	ErrSyncTimeout = errors.New("sync timeout")
)

// SyncTimeoutError is returned when resynchronization scanned too many
// bytes without finding a frame start.
type SyncTimeoutError struct {
	Scanned int
}

// Error implements error.
func (e *SyncTimeoutError) Error() string {
	return fmt.Sprintf("sync timeout: no frame start in %d bytes", e.Scanned)
}

// Is matches ErrSyncTimeout.
func (e *SyncTimeoutError) Is(target error) bool {
	return target == ErrSyncTimeout
}

// UnderrunError wraps ErrTransportUnderrun with the number of bytes
// actually received.
type UnderrunError struct {
	Want int
	Got  int
	Err  error
}

// Error implements error.
func (e *UnderrunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport underrun: got %d of %d bytes: %v", e.Got, e.Want, e.Err)
	}
	return fmt.Sprintf("transport underrun: got %d of %d bytes", e.Got, e.Want)
}

// Is matches ErrTransportUnderrun.
func (e *UnderrunError) Is(target error) bool {
	return target == ErrTransportUnderrun
}

// Unwrap returns the transport error causing the underrun, if any.
func (e *UnderrunError) Unwrap() error {
	return e.Err
}
