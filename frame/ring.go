package frame

import "github.com/cockroachdb/errors"

// Slot is one in-flight frame's worth of synchronization: a fence the CPU
// waits on before reusing the slot, the two semaphores that order
// acquire → render → present on the GPU, and the command buffer recorded
// into every time the slot comes around.
type Slot struct {
	index  int
	driver Driver

	inFlight       Fence
	imageAcquired  Semaphore
	renderFinished Semaphore
	commands       CommandBuffer
}

func (s *Slot) Index() int {
	return s.index
}

func (s *Slot) InFlight() Fence {
	return s.inFlight
}

func (s *Slot) ImageAcquired() Semaphore {
	return s.imageAcquired
}

func (s *Slot) RenderFinished() Semaphore {
	return s.renderFinished
}

func (s *Slot) Commands() CommandBuffer {
	return s.commands
}

// Arm resets the slot's fence so the next submission can signal it. It must
// only be called once that submission is certain to happen; a fence left
// unsignaled with nothing queued against it blocks WaitAndAcquire forever.
func (s *Slot) Arm() error {
	err := s.driver.ResetFences(s.inFlight)
	if err != nil {
		return errors.Wrapf(err, "resetting fence for frame slot %d", s.index)
	}
	return nil
}

// Ring is the fixed set of frame slots, indexed by the frame cursor.
type Ring struct {
	driver Driver
	slots  []Slot
}

// NewRing creates frames slots. Fences start signaled so the first pass
// over the ring does not wait.
func NewRing(driver Driver, frames int) (*Ring, error) {
	if frames < 1 {
		return nil, errors.Newf("frames in flight must be at least 1, got %d", frames)
	}

	buffers, err := driver.AllocateCommandBuffers(frames)
	if err != nil {
		return nil, errors.Wrap(err, "allocating frame command buffers")
	}
	if len(buffers) != frames {
		driver.FreeCommandBuffers(buffers...)
		return nil, errors.Newf("driver allocated %d command buffers, want %d", len(buffers), frames)
	}

	r := &Ring{
		driver: driver,
		slots:  make([]Slot, frames),
	}
	for i := range r.slots {
		r.slots[i] = Slot{index: i, driver: driver, commands: buffers[i]}
	}

	for i := range r.slots {
		slot := &r.slots[i]

		slot.imageAcquired, err = driver.CreateSemaphore()
		if err != nil {
			r.Destroy()
			return nil, errors.Wrapf(err, "creating image-acquired semaphore for frame slot %d", i)
		}

		slot.renderFinished, err = driver.CreateSemaphore()
		if err != nil {
			r.Destroy()
			return nil, errors.Wrapf(err, "creating render-finished semaphore for frame slot %d", i)
		}

		slot.inFlight, err = driver.CreateFence(true)
		if err != nil {
			r.Destroy()
			return nil, errors.Wrapf(err, "creating in-flight fence for frame slot %d", i)
		}
	}

	return r, nil
}

func (r *Ring) Len() int {
	return len(r.slots)
}

func (r *Ring) Slot(index int) *Slot {
	return &r.slots[index]
}

// WaitAndAcquire blocks until the slot's previous submission has completed
// and hands the slot out for reuse. The fence is left signaled; Slot.Arm
// resets it once a new submission is guaranteed, so a frame abandoned
// between the two leaves the slot immediately reusable.
func (r *Ring) WaitAndAcquire(index int) (*Slot, error) {
	slot := &r.slots[index]
	err := r.driver.WaitForFences(slot.inFlight)
	if err != nil {
		return nil, errors.Wrapf(err, "waiting for frame slot %d", index)
	}
	return slot, nil
}

func (r *Ring) ImageAcquiredSignal(index int) Semaphore {
	return r.slots[index].imageAcquired
}

func (r *Ring) RenderFinishedSignal(index int) Semaphore {
	return r.slots[index].renderFinished
}

// Destroy releases every slot's objects. The caller must have drained the
// device first. Safe to call more than once.
func (r *Ring) Destroy() {
	var buffers []CommandBuffer
	for i := range r.slots {
		slot := &r.slots[i]
		if slot.inFlight != nil {
			r.driver.DestroyFence(slot.inFlight)
		}
		if slot.renderFinished != nil {
			r.driver.DestroySemaphore(slot.renderFinished)
		}
		if slot.imageAcquired != nil {
			r.driver.DestroySemaphore(slot.imageAcquired)
		}
		if slot.commands != nil {
			buffers = append(buffers, slot.commands)
		}
	}
	if len(buffers) > 0 {
		r.driver.FreeCommandBuffers(buffers...)
	}
	r.slots = nil
}
