package frame

import "github.com/cockroachdb/errors"

// Fatal conditions. The renderer never retries these; callers are expected
// to stop the render loop and shut down.
var (
	ErrAcquireFailed      = errors.New("failed to acquire swapchain image")
	ErrSubmitFailed       = errors.New("failed to submit draw command buffer")
	ErrPresentFailed      = errors.New("failed to present swapchain image")
	ErrRecordingFailed    = errors.New("failed to record command buffer")
	ErrSurfaceUnsupported = errors.New("surface has no formats or present modes")
	ErrRecreateFailed     = errors.New("failed to recreate swapchain")

	// ErrClosed is returned by Renderer methods called after Shutdown.
	ErrClosed = errors.New("renderer is shut down")
)

// fatalf wraps a driver error and marks it with one of the sentinels above
// so errors.Is matches the sentinel while the cause chain is kept.
func fatalf(kind, err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}
