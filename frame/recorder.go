package frame

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Recorder fills a frame's command buffer with the triangle draw: one render
// pass, one pipeline, dynamic viewport and scissor covering the whole
// extent, and a single three-vertex draw.
type Recorder struct {
	driver     Driver
	clearColor core1_0.ClearValueFloat
}

func NewRecorder(driver Driver, clearColor [4]float32) *Recorder {
	return &Recorder{
		driver:     driver,
		clearColor: core1_0.ClearValueFloat(clearColor),
	}
}

// Record records into buffer from scratch. The buffer must already be reset
// and must not be pending execution. Failures are fatal and marked with
// ErrRecordingFailed.
func (r *Recorder) Record(buffer CommandBuffer, framebuffer Framebuffer, extent core1_0.Extent2D, pipeline Pipeline, renderPass RenderPass) error {
	err := r.driver.BeginCommandBuffer(buffer)
	if err != nil {
		return fatalf(ErrRecordingFailed, err, "beginning command buffer")
	}

	fullArea := core1_0.Rect2D{
		Offset: core1_0.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}

	err = r.driver.CmdBeginRenderPass(buffer, RenderPassBeginInfo{
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea:  fullArea,
		ClearValues: []core1_0.ClearValue{r.clearColor},
	})
	if err != nil {
		return fatalf(ErrRecordingFailed, err, "beginning render pass")
	}

	r.driver.CmdBindPipeline(buffer, pipeline)

	// Viewport and scissor are dynamic pipeline state so the pipeline
	// survives swapchain recreation.
	r.driver.CmdSetViewport(buffer, core1_0.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	r.driver.CmdSetScissor(buffer, fullArea)

	r.driver.CmdDraw(buffer, 3, 1, 0, 0)
	r.driver.CmdEndRenderPass(buffer)

	err = r.driver.EndCommandBuffer(buffer)
	if err != nil {
		return fatalf(ErrRecordingFailed, err, "ending command buffer")
	}

	return nil
}
