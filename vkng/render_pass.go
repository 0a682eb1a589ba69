package vkng

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
	"github.com/vkngwrapper/triangle/frame"
)

// SwapchainFormat is the format the swapchain will be built with. The
// render pass is created against it once and reused across recreations,
// which holds because the choice depends only on what the surface offers.
func (c *Context) SwapchainFormat() (core1_0.Format, error) {
	support, err := c.SurfaceSupport()
	if err != nil {
		return 0, err
	}
	if len(support.Formats) == 0 {
		return 0, frame.ErrSurfaceUnsupported
	}
	return frame.ChooseSurfaceFormat(support.Formats).Format, nil
}

// CreateRenderPass creates the single-subpass pass the triangle is drawn
// in: one color attachment cleared on load and left ready for present.
func (c *Context) CreateRenderPass(format core1_0.Format) (core1_0.RenderPass, error) {
	renderPass, _, err := c.deviceDriver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: []core1_0.AttachmentDescription{
			{
				Format:         format,
				Samples:        core1_0.Samples1,
				LoadOp:         core1_0.AttachmentLoadOpClear,
				StoreOp:        core1_0.AttachmentStoreOpStore,
				StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
				StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
				InitialLayout:  core1_0.ImageLayoutUndefined,
				FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
			},
		},
		Subpasses: []core1_0.SubpassDescription{
			{
				PipelineBindPoint: core1_0.PipelineBindPointGraphics,
				ColorAttachments: []core1_0.AttachmentReference{
					{
						Attachment: 0,
						Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
					},
				},
			},
		},
		// The acquire semaphore is waited on at color attachment output, so
		// the layout transition has to wait for that stage as well.
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput,
				DstAccessMask: core1_0.AccessColorAttachmentWrite,
			},
		},
	})
	if err != nil {
		return core1_0.RenderPass{}, err
	}

	return renderPass, nil
}

func (c *Context) DestroyRenderPass(renderPass core1_0.RenderPass) {
	if renderPass.Initialized() {
		c.deviceDriver.DestroyRenderPass(renderPass, nil)
	}
}
