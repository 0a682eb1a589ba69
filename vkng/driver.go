package vkng

import (
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/triangle/frame"
)

var _ frame.Driver = (*Context)(nil)

func (c *Context) CreateFence(signaled bool) (frame.Fence, error) {
	var flags core1_0.FenceCreateFlags
	if signaled {
		flags = core1_0.FenceCreateSignaled
	}

	fence, _, err := c.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{
		Flags: flags,
	})
	if err != nil {
		return nil, err
	}
	return fence, nil
}

func (c *Context) DestroyFence(fence frame.Fence) {
	c.deviceDriver.DestroyFence(fence.(core1_0.Fence), nil)
}

func (c *Context) CreateSemaphore() (frame.Semaphore, error) {
	semaphore, _, err := c.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
	if err != nil {
		return nil, err
	}
	return semaphore, nil
}

func (c *Context) DestroySemaphore(semaphore frame.Semaphore) {
	c.deviceDriver.DestroySemaphore(semaphore.(core1_0.Semaphore), nil)
}

func (c *Context) AllocateCommandBuffers(count int) ([]frame.CommandBuffer, error) {
	buffers, _, err := c.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        c.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	})
	if err != nil {
		return nil, err
	}

	out := make([]frame.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		out = append(out, buffer)
	}
	return out, nil
}

func (c *Context) FreeCommandBuffers(buffers ...frame.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	c.deviceDriver.FreeCommandBuffers(commandBuffers(buffers)...)
}

func (c *Context) WaitForFences(fences ...frame.Fence) error {
	_, err := c.deviceDriver.WaitForFences(true, common.NoTimeout, vkFences(fences)...)
	return err
}

func (c *Context) ResetFences(fences ...frame.Fence) error {
	_, err := c.deviceDriver.ResetFences(vkFences(fences)...)
	return err
}

func (c *Context) DeviceWaitIdle() error {
	_, err := c.deviceDriver.DeviceWaitIdle()
	return err
}

func (c *Context) ResetCommandBuffer(buffer frame.CommandBuffer) error {
	_, err := c.deviceDriver.ResetCommandBuffer(buffer.(core1_0.CommandBuffer), 0)
	return err
}

func (c *Context) BeginCommandBuffer(buffer frame.CommandBuffer) error {
	_, err := c.deviceDriver.BeginCommandBuffer(buffer.(core1_0.CommandBuffer), core1_0.CommandBufferBeginInfo{})
	return err
}

func (c *Context) EndCommandBuffer(buffer frame.CommandBuffer) error {
	_, err := c.deviceDriver.EndCommandBuffer(buffer.(core1_0.CommandBuffer))
	return err
}

func (c *Context) CmdBeginRenderPass(buffer frame.CommandBuffer, info frame.RenderPassBeginInfo) error {
	return c.deviceDriver.CmdBeginRenderPass(buffer.(core1_0.CommandBuffer), core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  info.RenderPass.(core1_0.RenderPass),
			Framebuffer: info.Framebuffer.(core1_0.Framebuffer),
			RenderArea:  info.RenderArea,
			ClearValues: info.ClearValues,
		})
}

func (c *Context) CmdBindPipeline(buffer frame.CommandBuffer, pipeline frame.Pipeline) {
	c.deviceDriver.CmdBindPipeline(buffer.(core1_0.CommandBuffer), core1_0.PipelineBindPointGraphics, pipeline.(core1_0.Pipeline))
}

func (c *Context) CmdSetViewport(buffer frame.CommandBuffer, viewports ...core1_0.Viewport) {
	c.deviceDriver.CmdSetViewport(buffer.(core1_0.CommandBuffer), viewports...)
}

func (c *Context) CmdSetScissor(buffer frame.CommandBuffer, scissors ...core1_0.Rect2D) {
	c.deviceDriver.CmdSetScissor(buffer.(core1_0.CommandBuffer), scissors...)
}

func (c *Context) CmdDraw(buffer frame.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance int) {
	c.deviceDriver.CmdDraw(buffer.(core1_0.CommandBuffer), vertexCount, instanceCount, uint32(firstVertex), uint32(firstInstance))
}

func (c *Context) CmdEndRenderPass(buffer frame.CommandBuffer) {
	c.deviceDriver.CmdEndRenderPass(buffer.(core1_0.CommandBuffer))
}

func (c *Context) QueueSubmit(fence frame.Fence, submits ...frame.SubmitInfo) error {
	infos := make([]core1_0.SubmitInfo, 0, len(submits))
	for _, submit := range submits {
		infos = append(infos, core1_0.SubmitInfo{
			WaitSemaphores:   semaphores(submit.WaitSemaphores),
			WaitDstStageMask: submit.WaitDstStageMask,
			CommandBuffers:   commandBuffers(submit.CommandBuffers),
			SignalSemaphores: semaphores(submit.SignalSemaphores),
		})
	}

	var signal *core1_0.Fence
	if fence != nil {
		f := fence.(core1_0.Fence)
		signal = &f
	}

	_, err := c.deviceDriver.QueueSubmit(c.graphicsQueue, signal, infos...)
	return err
}

func (c *Context) CreateImageView(image frame.Image, format core1_0.Format) (frame.ImageView, error) {
	imageView, _, err := c.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image.(core1_0.Image),
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	if err != nil {
		return nil, err
	}
	return imageView, nil
}

func (c *Context) DestroyImageView(view frame.ImageView) {
	c.deviceDriver.DestroyImageView(view.(core1_0.ImageView), nil)
}

func (c *Context) CreateFramebuffer(renderPass frame.RenderPass, view frame.ImageView, extent core1_0.Extent2D) (frame.Framebuffer, error) {
	framebuffer, _, err := c.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass: renderPass.(core1_0.RenderPass),
		Layers:     1,
		Attachments: []core1_0.ImageView{
			view.(core1_0.ImageView),
		},
		Width:  extent.Width,
		Height: extent.Height,
	})
	if err != nil {
		return nil, err
	}
	return framebuffer, nil
}

func (c *Context) DestroyFramebuffer(framebuffer frame.Framebuffer) {
	c.deviceDriver.DestroyFramebuffer(framebuffer.(core1_0.Framebuffer), nil)
}

func vkFences(fences []frame.Fence) []core1_0.Fence {
	out := make([]core1_0.Fence, 0, len(fences))
	for _, fence := range fences {
		out = append(out, fence.(core1_0.Fence))
	}
	return out
}

func semaphores(in []frame.Semaphore) []core1_0.Semaphore {
	out := make([]core1_0.Semaphore, 0, len(in))
	for _, semaphore := range in {
		out = append(out, semaphore.(core1_0.Semaphore))
	}
	return out
}

func commandBuffers(in []frame.CommandBuffer) []core1_0.CommandBuffer {
	out := make([]core1_0.CommandBuffer, 0, len(in))
	for _, buffer := range in {
		out = append(out, buffer.(core1_0.CommandBuffer))
	}
	return out
}
