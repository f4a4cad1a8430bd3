package erased

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"unsafe"

	"github.com/dustin/go-humanize"

	"github.com/oliverbestmann/imposter/internal/assert"
)

// ErrCapacityOverflow is returned if a region can not be grown to the
// requested capacity. The region is left unchanged in that case.
var ErrCapacityOverflow = errors.New("capacity overflow")

// maxRegionBytes is the largest region we ask the runtime for.
const maxRegionBytes = uintptr(math.MaxInt) >> 1

// Region is a block of typed memory holding up to Cap values of a single type.
// The region does not know which slots are initialized, callers keep track of that.
type Region struct {
	Type *Type

	// slice of values, len(slice) == cap(slice) == cap
	slice reflect.Value

	// memory points to the first slot of the slice
	memory unsafe.Pointer

	cap int
}

// MakeRegion creates an empty region for values of the given type. No memory
// is allocated until the region is resized.
func MakeRegion(ty *Type) Region {
	return Region{Type: ty}
}

func (r *Region) Cap() int {
	return r.cap
}

// Bytes returns the number of bytes covered by the region.
func (r *Region) Bytes() uintptr {
	return uintptr(r.cap) * r.Type.Size
}

// Ptr returns a pointer to the given slot.
func (r *Region) Ptr(slot int) unsafe.Pointer {
	if debug {
		assert.InBounds(slot, r.cap)
	}

	return unsafe.Add(r.memory, uintptr(slot)*r.Type.Size)
}

// Resize moves the first live slots into a new region of exactly newCap slots.
// No constructor or destructor runs during the move, the values are relocated.
func (r *Region) Resize(newCap, live int) error {
	if newCap == r.cap {
		return nil
	}

	assert.FitsLive(newCap, live)
	assert.FitsLive(r.cap, live)

	if newCap == 0 {
		r.Release()
		return nil
	}

	if size := r.Type.Size; size != 0 && uintptr(newCap) > maxRegionBytes/size {
		return fmt.Errorf("region of %d x %s: %w", newCap, r.Type, ErrCapacityOverflow)
	}

	slice, err := makeSlice(r.Type.sliceType, newCap)
	if err != nil {
		return fmt.Errorf("region of %d x %s: %w", newCap, r.Type, err)
	}

	if live > 0 {
		reflect.Copy(slice, r.slice.Slice(0, live))
	}

	slog.Debug("Reallocate erased region",
		slog.String("type", r.Type.Name),
		slog.Int("oldCap", r.cap),
		slog.Int("newCap", newCap),
		slog.String("bytes", humanize.Bytes(uint64(uintptr(newCap)*r.Type.Size))))

	r.slice = slice
	r.memory = slice.UnsafePointer()
	r.cap = newCap

	return nil
}

// Release drops the memory of the region without running any destructor.
func (r *Region) Release() {
	r.slice = reflect.Value{}
	r.memory = nil
	r.cap = 0
}

// Shift copies n slots starting at from to the slots starting at to.
// The ranges may overlap.
func (r *Region) Shift(from, to, n int) {
	if n <= 0 || from == to {
		return
	}

	reflect.Copy(r.slice.Slice(to, to+n), r.slice.Slice(from, from+n))
}

// Clear zeroes n slots starting at slot without running any destructor.
func (r *Region) Clear(slot, n int) {
	if n <= 0 {
		return
	}

	r.slice.Slice(slot, slot+n).Clear()
}

func makeSlice(sliceType reflect.Type, n int) (slice reflect.Value, err error) {
	defer func() {
		// reflect panics if the runtime can not represent the allocation
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%v: %w", recovered, ErrCapacityOverflow)
		}
	}()

	return reflect.MakeSlice(sliceType, n, n), nil
}
