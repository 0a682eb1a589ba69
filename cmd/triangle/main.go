package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/triangle/config"
	"github.com/vkngwrapper/triangle/frame"
	"github.com/vkngwrapper/triangle/vkng"
	"github.com/vkngwrapper/triangle/window"
)

func run(cfg config.Config) (err error) {
	win, err := window.New(window.Config{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	ctx, err := vkng.NewContext(vkng.ContextInfo{
		Window:           win.SDL(),
		ApplicationName:  cfg.Title,
		EnableValidation: cfg.Validation,
	})
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	format, err := ctx.SwapchainFormat()
	if err != nil {
		return err
	}
	renderPass, err := ctx.CreateRenderPass(format)
	if err != nil {
		return errors.Wrap(err, "creating render pass")
	}
	defer ctx.DestroyRenderPass(renderPass)

	cache, err := ctx.OpenPipelineCache(cfg.PipelineCachePath)
	if err != nil {
		return err
	}
	defer cache.Destroy()

	pipeline, err := ctx.CreatePipeline(vkng.PipelineInfo{
		RenderPass: renderPass,
		ShaderDir:  cfg.ShaderDir,
		Cache:      cache,
	})
	if err != nil {
		return err
	}
	defer pipeline.Destroy()

	renderer, err := frame.NewRenderer(frame.RendererInfo{
		Driver:          ctx,
		SwapchainDriver: ctx,
		Window:          win,
		RenderPass:      renderPass,
		Pipeline:        pipeline.Handle(),
		Resized:         win.Resized(),
		Config: frame.Config{
			FramesInFlight: cfg.FramesInFlight,
			ClearColor:     [4]float32(cfg.ClearColor),
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, renderer.Shutdown())
		err = errors.CombineErrors(err, cache.Save())
	}()

	for {
		win.PumpEvents()
		win.WaitWhileMinimized()
		if win.Closed() {
			return nil
		}

		err = renderer.RenderFrame()
		if err != nil {
			return err
		}
	}
}

// newLogger builds the process logger at the configured level.
func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func main() {
	runtime.LockOSThread()

	cfg, err := config.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "triangle: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "triangle: %v\n", err)
		os.Exit(2)
	}
	frame.SetLogger(logger)

	err = run(cfg)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
