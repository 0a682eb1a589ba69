package vkng

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/triangle/pipelinecache"
)

// PipelineCache is a driver pipeline cache backed by a file.
type PipelineCache struct {
	ctx    *Context
	cache  core1_0.PipelineCache
	path   string
	primed bool
}

// Identity is what a cache file must have been written for to be reused on
// this device.
func (c *Context) Identity() pipelinecache.Identity {
	return pipelinecache.Identity{
		VendorID:  c.properties.VendorID,
		DeviceID:  c.properties.DeviceID,
		CacheUUID: c.properties.PipelineCacheUUID,
	}
}

// OpenPipelineCache creates a pipeline cache seeded from path when the file
// holds data for this device. An empty path gives an unseeded cache that is
// never saved.
func (c *Context) OpenPipelineCache(path string) (*PipelineCache, error) {
	data, err := pipelinecache.Load(path, c.Identity())
	if err != nil {
		return nil, err
	}

	cache, _, err := c.deviceDriver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: data,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating pipeline cache")
	}

	return &PipelineCache{
		ctx:    c,
		cache:  cache,
		path:   path,
		primed: data != nil,
	}, nil
}

// Primed reports whether the cache was seeded from disk.
func (p *PipelineCache) Primed() bool {
	return p.primed
}

// Save writes the cache contents back to its file.
func (p *PipelineCache) Save() error {
	if p.path == "" || !p.cache.Initialized() {
		return nil
	}

	data, _, err := p.ctx.deviceDriver.GetPipelineCacheData(p.cache)
	if err != nil {
		return errors.Wrap(err, "reading pipeline cache data")
	}
	return pipelinecache.Save(p.path, data)
}

func (p *PipelineCache) Destroy() {
	if p.cache.Initialized() {
		p.ctx.deviceDriver.DestroyPipelineCache(p.cache, nil)
		p.cache = core1_0.PipelineCache{}
	}
}
