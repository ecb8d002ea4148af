package sch

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"

	"github.com/mb0/dtm/twin"
	"github.com/mb0/dtm/twinmem"
)

type slowLoader struct {
	twin.Schemas
	calls   int32
	release chan struct{}
}

func (l *slowLoader) SchemaOf(model string) ([]twin.Attr, error) {
	atomic.AddInt32(&l.calls, 1)
	if l.release != nil {
		<-l.release
	}
	return l.Schemas.SchemaOf(model)
}

type failing struct {
	twin.Schemas
	fails int32
	calls int32
}

func (l *failing) SchemaOf(model string) ([]twin.Attr, error) {
	n := atomic.AddInt32(&l.calls, 1)
	if n <= l.fails {
		return nil, errors.New("catalog unavailable")
	}
	return l.Schemas.SchemaOf(model)
}

func TestSingleFlight(t *testing.T) {
	ldr := &slowLoader{Schemas: twinmem.Fixture(), release: make(chan struct{})}
	c := New(ldr)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := c.Load(twinmem.ModelAssets)
			if err != nil || s == nil {
				t.Errorf("load error: %v", err)
			}
		}()
	}
	close(ldr.release)
	wg.Wait()
	if n := atomic.LoadInt32(&ldr.calls); n != 1 {
		t.Errorf("loader called %d times want 1", n)
	}
	// loaded schemas are returned without touching the loader again
	if _, err := c.Load(twinmem.ModelAssets); err != nil {
		t.Fatalf("load error: %v", err)
	}
	if n := atomic.LoadInt32(&ldr.calls); n != 1 {
		t.Errorf("loader called %d times after reload want 1", n)
	}
}

func TestFailureNotCached(t *testing.T) {
	ldr := &failing{Schemas: twinmem.Fixture(), fails: 1}
	c := New(ldr)
	if _, err := c.Load(twinmem.ModelAssets); err == nil {
		t.Fatalf("want load error on first call")
	}
	// the failure must not stick, display names fall back meanwhile
	if got := c.DisplayName(twinmem.ModelRooms, "z:2b"); got != "Area" {
		t.Errorf("rooms unaffected by assets failure, got %s", got)
	}
	s, err := c.Load(twinmem.ModelAssets)
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if got := s.DisplayName("z:7Q"); got != "Serial Number" {
		t.Errorf("display name got %s want Serial Number", got)
	}
}

func TestDisplayName(t *testing.T) {
	c := New(twinmem.Fixture())
	tests := []struct {
		model, id, want string
	}{
		{twinmem.ModelAssets, "z:7Q", "Serial Number"},
		{twinmem.ModelAssets, "z:!7Q", "Serial Number"},
		{twinmem.ModelAssets, "z:zz", "z:zz"},
		{twinmem.ModelAssets, twinmem.RoomRef, "Room"},
		{twinmem.ModelRooms, "z:2b", "Area"},
	}
	for _, test := range tests {
		if got := c.DisplayName(test.model, test.id); got != test.want {
			t.Errorf("display name %s got %s want %s", test.id, got, test.want)
		}
	}
	// unknown models fall back to the id instead of failing the caller
	if got := c.DisplayName("urn:adsk.dtm:bogus", "z:7Q"); got != "z:7Q" {
		t.Errorf("unknown model got %s want z:7Q", got)
	}
}
