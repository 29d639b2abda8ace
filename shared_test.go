package portage

import (
	"sync"
	"testing"

	"github.com/chazu/portage/codec"
)

func TestRc_CloneDrop(t *testing.T) {
	r := NewRc[hello](smallHello(3))
	if r.Refs() != 1 {
		t.Fatalf("Refs after New: %d", r.Refs())
	}
	s := r.Clone()
	if r.Refs() != 2 || s.Refs() != 2 {
		t.Fatalf("Refs after Clone: %d", r.Refs())
	}
	s.Drop()
	if r.Refs() != 1 {
		t.Fatalf("Refs after Drop: %d", r.Refs())
	}
	if r.Elem().Hi() != "hi small! 3" {
		t.Errorf("Elem after sibling Drop: %q", r.Elem().Hi())
	}
	r.Drop()
	if r.Elem() != nil {
		t.Error("cell not cleared after final Drop")
	}
}

func TestRc_OverDropPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("double Drop did not panic")
		}
	}()
	r := NewRc(1)
	r.Drop()
	r.Drop()
}

func TestArc_CloneDropConcurrent(t *testing.T) {
	a := NewArc[hello](wideHello(9))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := a.Clone()
			if h.Elem().Hi() != "hi wide! 9" {
				t.Error("Elem through cloned handle wrong")
			}
			h.Drop()
		}()
	}
	wg.Wait()
	if a.Refs() != 1 {
		t.Errorf("Refs after concurrent churn: %d, want 1", a.Refs())
	}
}

func TestRcArc_RoundTrip(t *testing.T) {
	bothCodecs(t, func(t *testing.T, c codec.Codec) {
		r := NewRc[hello](namedHello{Name: "rc"})
		data, err := c.Marshal(r)
		if err != nil {
			t.Fatalf("Marshal Rc: %v", err)
		}
		var rOut Rc[hello]
		if err := c.Unmarshal(data, &rOut); err != nil {
			t.Fatalf("Unmarshal Rc: %v", err)
		}
		if rOut.Elem().Hi() != "hi rc!" {
			t.Errorf("Rc round trip: %q", rOut.Elem().Hi())
		}
		// a deserialized handle is a fresh cell, never a revived share
		if rOut.Refs() != 1 {
			t.Errorf("Rc Refs after decode: %d, want 1", rOut.Refs())
		}

		a := NewArc[hello](namedHello{Name: "arc"})
		data, err = c.Marshal(a)
		if err != nil {
			t.Fatalf("Marshal Arc: %v", err)
		}
		var aOut Arc[hello]
		if err := c.Unmarshal(data, &aOut); err != nil {
			t.Fatalf("Unmarshal Arc: %v", err)
		}
		if aOut.Elem().Hi() != "hi arc!" {
			t.Errorf("Arc round trip: %q", aOut.Elem().Hi())
		}
		if aOut.Refs() != 1 {
			t.Errorf("Arc Refs after decode: %d, want 1", aOut.Refs())
		}
	})
}
