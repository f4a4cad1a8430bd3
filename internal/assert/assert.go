package assert

import (
	"fmt"
)

// InBounds panics if idx is not within [0, n).
func InBounds(idx, n int) {
	if uint(idx) >= uint(n) {
		panic(fmt.Sprintf("index %d out of bounds [0, %d)", idx, n))
	}
}

// FitsLive panics if a region of capacity slots can not hold live values.
func FitsLive(capacity, live int) {
	if live < 0 || capacity < live {
		panic(fmt.Sprintf("capacity %d can not hold %d live values", capacity, live))
	}
}
