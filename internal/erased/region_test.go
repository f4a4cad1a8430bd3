package erased

import (
	"math"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func regionValues[T any](r *Region, n int) []T {
	var values []T
	for idx := range n {
		values = append(values, *(*T)(r.Ptr(idx)))
	}

	return values
}

func TestRegion_Empty(t *testing.T) {
	r := MakeRegion(TypeOf[int]())
	require.Equal(t, 0, r.Cap())
	require.Equal(t, uintptr(0), r.Bytes())
}

func TestRegion_ResizeRelocates(t *testing.T) {
	r := MakeRegion(TypeOf[string]())
	require.NoError(t, r.Resize(2, 0))

	*(*string)(r.Ptr(0)) = "a"
	*(*string)(r.Ptr(1)) = "b"

	require.NoError(t, r.Resize(8, 2))
	runtime.GC()

	require.Equal(t, 8, r.Cap())
	require.Equal(t, uintptr(8)*TypeOf[string]().Size, r.Bytes())
	require.Equal(t, []string{"a", "b"}, regionValues[string](&r, 2))

	// new slots are zero
	require.Equal(t, "", *(*string)(r.Ptr(2)))
}

func TestRegion_ResizeToZeroReleases(t *testing.T) {
	r := MakeRegion(TypeOf[int]())
	require.NoError(t, r.Resize(4, 0))
	require.NoError(t, r.Resize(0, 0))
	require.Equal(t, 0, r.Cap())
}

func TestRegion_ResizeDroppingLiveValuesPanics(t *testing.T) {
	r := MakeRegion(TypeOf[int]())
	require.NoError(t, r.Resize(4, 0))

	require.Panics(t, func() { _ = r.Resize(2, 3) })
}

func TestRegion_Overflow(t *testing.T) {
	r := MakeRegion(TypeOf[[1024]byte]())
	require.NoError(t, r.Resize(1, 0))

	err := r.Resize(math.MaxInt, 1)
	require.ErrorIs(t, err, ErrCapacityOverflow)
	require.Equal(t, 1, r.Cap())
}

func TestRegion_Shift(t *testing.T) {
	r := MakeRegion(TypeOf[string]())
	require.NoError(t, r.Resize(5, 0))

	for idx := range 5 {
		*(*string)(r.Ptr(idx)) = strconv.Itoa(idx)
	}

	// close a gap at index 1
	r.Shift(2, 1, 3)
	require.Equal(t, []string{"0", "2", "3", "4", "4"}, regionValues[string](&r, 5))

	// open a gap at index 0
	r.Shift(0, 1, 4)
	require.Equal(t, []string{"0", "0", "2", "3", "4"}, regionValues[string](&r, 5))

	r.Clear(3, 2)
	require.Equal(t, []string{"0", "0", "2", "", ""}, regionValues[string](&r, 5))
}
