package screensaver

import (
	"sort"
	"sync"
	"testing"

	"github.com/mvickers/driftscreen/internal/compositor"
	"github.com/mvickers/driftscreen/internal/ipc"
)

func TestNextImageRotates(t *testing.T) {
	m := NewManager([]string{"a.png", "b.png", "c.png"})

	got := []string{m.NextImage(), m.NextImage(), m.NextImage(), m.NextImage()}
	want := []string{"a.png", "b.png", "c.png", "a.png"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rotation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if m.CurrentImage() != "a.png" {
		t.Errorf("CurrentImage() = %q, want a.png", m.CurrentImage())
	}
}

func TestNextImageEmptyList(t *testing.T) {
	m := NewManager(nil)
	if got := m.NextImage(); got != "" {
		t.Errorf("NextImage() on empty list = %q, want empty", got)
	}
}

func TestShufflePreservesSet(t *testing.T) {
	images := []string{"a", "b", "c", "d", "e"}
	m := NewManager(append([]string(nil), images...))
	m.Shuffle()

	got := append([]string(nil), m.GetImages()...)
	sort.Strings(got)
	for i, want := range images {
		if got[i] != want {
			t.Fatalf("shuffle changed the set: %v", got)
		}
	}
}

func TestSetImagesReplacesList(t *testing.T) {
	m := NewManager([]string{"old.png"})
	m.SetImages([]string{"x.png", "y.png"})
	if got := m.NextImage(); got != "x.png" {
		t.Errorf("NextImage() after SetImages = %q, want x.png", got)
	}
}

func TestEnqueueCommandDropsWhenFull(t *testing.T) {
	m := NewManager(nil)
	for i := 0; i < 10; i++ {
		m.EnqueueCommand(ipc.Command{Type: ipc.CommandNext})
	}
	// The queue is bounded; the excess must be dropped, not block.
	if len(m.cmds) != cap(m.cmds) {
		t.Errorf("queue length = %d, want full at %d", len(m.cmds), cap(m.cmds))
	}
}

func TestPickKind(t *testing.T) {
	m := NewManager(nil)
	if got := m.pickKind("crumble"); got != compositor.KindCrumble {
		t.Errorf("pickKind(crumble) = %v", got)
	}
	for i := 0; i < 50; i++ {
		got := m.pickKind("random")
		if got == compositor.KindNone {
			t.Fatal("pickKind(random) returned KindNone")
		}
	}
	// Unknown names fall back to a real effect instead of failing.
	if got := m.pickKind("swoosh"); got == compositor.KindNone {
		t.Error("pickKind(unknown) returned KindNone")
	}
}

func TestActiveEffectIdle(t *testing.T) {
	m := NewManager(nil)
	if got := m.ActiveEffect(); got != "none" {
		t.Errorf("ActiveEffect() with no heads = %q, want none", got)
	}
}

// ActiveEffect and Outputs answer the IPC goroutine while the render thread
// republishes the snapshot; both sides must hold up under the race detector.
func TestStatusSnapshotConcurrentReads(t *testing.T) {
	m := NewManager(nil)
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_ = m.ActiveEffect()
				_ = m.Outputs()
			}
		}()
	}
	for i := 0; i < 1000; i++ {
		m.publishStatus()
	}
	close(done)
	wg.Wait()

	if got := m.ActiveEffect(); got != "none" {
		t.Errorf("ActiveEffect() with no heads = %q, want none", got)
	}
	if got := m.Outputs(); len(got) != 0 {
		t.Errorf("Outputs() with no heads = %v, want empty", got)
	}
}
