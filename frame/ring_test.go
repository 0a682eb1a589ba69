package frame

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestNewRing(t *testing.T) {
	d := newFakeDevice()
	r, err := NewRing(d, 3)
	if err != nil {
		t.Fatalf("NewRing() error = %v", err)
	}

	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	if len(d.fences) != 3 || len(d.semaphores) != 6 || len(d.buffers) != 3 {
		t.Fatalf("created %d fences, %d semaphores, %d buffers; want 3, 6, 3",
			len(d.fences), len(d.semaphores), len(d.buffers))
	}
	for i, f := range d.fences {
		if !f.signaled {
			t.Errorf("fence %d created unsignaled", i)
		}
	}

	seen := map[Semaphore]bool{}
	for i := 0; i < r.Len(); i++ {
		for _, s := range []Semaphore{r.ImageAcquiredSignal(i), r.RenderFinishedSignal(i)} {
			if seen[s] {
				t.Errorf("slot %d shares a semaphore with another slot", i)
			}
			seen[s] = true
		}
		if r.Slot(i).Index() != i {
			t.Errorf("Slot(%d).Index() = %d", i, r.Slot(i).Index())
		}
	}
}

func TestNewRingRejectsZeroFrames(t *testing.T) {
	if _, err := NewRing(newFakeDevice(), 0); err == nil {
		t.Fatal("NewRing(0) succeeded, want error")
	}
}

func TestNewRingCleansUpOnFailure(t *testing.T) {
	d := newFakeDevice()
	d.failCreateFence = errors.New("out of memory")

	if _, err := NewRing(d, 2); err == nil {
		t.Fatal("NewRing() succeeded, want error")
	}
	for _, s := range d.semaphores {
		if !s.destroyed {
			t.Errorf("semaphore %d leaked after failed NewRing", s.id)
		}
	}
	for _, b := range d.buffers {
		if !b.freed {
			t.Errorf("command buffer %d leaked after failed NewRing", b.id)
		}
	}
}

func TestWaitAndAcquireLeavesFenceSignaled(t *testing.T) {
	d := newFakeDevice()
	r, err := NewRing(d, 2)
	if err != nil {
		t.Fatal(err)
	}

	slot, err := r.WaitAndAcquire(1)
	if err != nil {
		t.Fatalf("WaitAndAcquire() error = %v", err)
	}
	if slot.Index() != 1 {
		t.Errorf("slot index = %d, want 1", slot.Index())
	}
	fence := slot.InFlight().(*fakeFence)
	if !fence.signaled {
		t.Error("fence reset before the slot was armed")
	}

	// An abandoned frame must not block the next acquire of the same slot.
	if _, err := r.WaitAndAcquire(1); err != nil {
		t.Fatalf("second WaitAndAcquire() error = %v", err)
	}

	if err := slot.Arm(); err != nil {
		t.Fatalf("Arm() error = %v", err)
	}
	if fence.signaled {
		t.Error("fence still signaled after Arm")
	}
}

func TestRingDestroy(t *testing.T) {
	d := newFakeDevice()
	r, err := NewRing(d, 2)
	if err != nil {
		t.Fatal(err)
	}

	r.Destroy()
	r.Destroy()

	for _, f := range d.fences {
		if !f.destroyed {
			t.Errorf("fence %d not destroyed", f.id)
		}
	}
	for _, s := range d.semaphores {
		if !s.destroyed {
			t.Errorf("semaphore %d not destroyed", s.id)
		}
	}
	for _, b := range d.buffers {
		if !b.freed {
			t.Errorf("command buffer %d not freed", b.id)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len() after Destroy = %d, want 0", r.Len())
	}
}
