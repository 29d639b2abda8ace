package portage

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	gojson "github.com/goccy/go-json"
)

func TestBox_Accessors(t *testing.T) {
	b := NewBox[hello](smallHello(9))
	if b.Elem().Hi() != "hi small! 9" {
		t.Errorf("Elem: %q", b.Elem().Hi())
	}
	b.Set(wideHello(12))
	if b.Elem().Hi() != "hi wide! 12" {
		t.Errorf("Set/Elem: %q", b.Elem().Hi())
	}
	if b.String() != "12" {
		t.Errorf("String: %q", b.String())
	}
}

func TestBoxAs(t *testing.T) {
	b := NewBox[any](smallHello(78))
	got, ok := BoxAs[smallHello](b)
	if !ok || got != 78 {
		t.Errorf("BoxAs[smallHello]: got %v, %v", got, ok)
	}
	if _, ok := BoxAs[wideHello](b); ok {
		t.Error("BoxAs[wideHello] succeeded on a smallHello")
	}
}

// Boxes must nest inside ordinary structs and round-trip under both
// codecs without any annotation beyond the struct tags.
func TestBox_NestsInStructs(t *testing.T) {
	type message struct {
		Greeting *Box[hello]    `cbor:"1,keyasint" json:"greeting"`
		Note     *Box[string]   `cbor:"2,keyasint" json:"note"`
		Samples  *Box[[]uint16] `cbor:"3,keyasint" json:"samples"`
		Plain    int            `cbor:"4,keyasint" json:"plain"`
	}
	in := message{
		Greeting: NewBox[hello](namedHello{Name: "grace"}),
		Note:     NewBox("abc"),
		Samples:  NewBox([]uint16{1, 2, 3}),
		Plain:    17,
	}

	check := func(t *testing.T, out message) {
		t.Helper()
		if out.Greeting.Elem().Hi() != "hi grace!" {
			t.Errorf("Greeting: %q", out.Greeting.Elem().Hi())
		}
		if out.Note.Elem() != "abc" {
			t.Errorf("Note: %q", out.Note.Elem())
		}
		if s := out.Samples.Elem(); len(s) != 3 || s[1] != 2 {
			t.Errorf("Samples: %v", s)
		}
		if out.Plain != 17 {
			t.Errorf("Plain: %d", out.Plain)
		}
	}

	t.Run("cbor", func(t *testing.T) {
		data, err := cbor.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		var out message
		if err := cbor.Unmarshal(data, &out); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		check(t, out)
	})
	t.Run("json", func(t *testing.T) {
		data, err := gojson.Marshal(in)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		var out message
		if err := gojson.Unmarshal(data, &out); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		check(t, out)
	})
}
