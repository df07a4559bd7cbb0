package sat

import (
	"fmt"
	"testing"
)

func ExampleResetSet() {
	rs := &ResetSet{}
	rs.Grow(3)

	rs.Add(1)
	fmt.Println(rs.Contains(1))

	rs.Clear()
	fmt.Println(rs.Contains(1))

	// Output:
	// true
	// false
}

func TestResetSet_GrowAfterClear(t *testing.T) {
	rs := &ResetSet{}
	rs.Grow(1)
	rs.Add(0)
	rs.Clear()
	rs.Grow(3)

	for v := 0; v < 3; v++ {
		if rs.Contains(v) {
			t.Errorf("Contains(%d): got true, want false", v)
		}
	}
}

func TestResetSet_TimestampOverflow(t *testing.T) {
	rs := &ResetSet{}
	rs.Grow(2)
	rs.Add(0)

	rs.now = ^uint32(0) // force the next Clear to wrap around
	rs.Clear()

	if rs.Contains(0) || rs.Contains(1) {
		t.Error("set should be empty after timestamp overflow")
	}
	rs.Add(1)
	if !rs.Contains(1) {
		t.Error("Contains(1): got false, want true")
	}
}
