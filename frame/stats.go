package frame

import "time"

// Stats counts what the renderer has done since it was created.
type Stats struct {
	// Frames is the number of frames submitted and presented.
	Frames      int
	// Skipped is the number of frames abandoned because the swapchain was
	// out of date at acquire time.
	Skipped     int
	// Recreations is the number of successful swapchain rebuilds.
	Recreations int
	// FrameTime is the CPU time spent in presented frames.
	FrameTime   time.Duration
}

func (s Stats) AverageFrameTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.FrameTime / time.Duration(s.Frames)
}
