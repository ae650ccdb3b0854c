// Package process cleans up the browser processes spawned for rendering.
package process

import "errors"

// ErrInvalidPID is returned for PIDs that would target the caller's own
// process group.
var ErrInvalidPID = errors.New("invalid pid")
