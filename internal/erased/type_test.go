package erased

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type Position struct {
	X, Y float64
}

type Name struct {
	Value string
}

type counter struct {
	drops *int
}

func (c counter) Drop() {
	*c.drops += 1
}

type handle struct {
	drops *int
}

func (h *handle) Drop() {
	*h.drops += 1
}

func TestTypeOf_Cached(t *testing.T) {
	first := TypeOf[Position]()
	second := TypeOf[Position]()

	require.Same(t, first, second)
	require.True(t, first.Is(second))
	require.False(t, first.Is(TypeOf[Name]()))
	require.NotEqual(t, TypeOf[int32](), TypeOf[uint32]())
}

func TestTypeOf_Concurrent(t *testing.T) {
	type Concurrent struct{ Value int }

	var wg sync.WaitGroup

	results := make([]*Type, 16)
	for idx := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()
			results[idx] = TypeOf[Concurrent]()
		}()
	}

	wg.Wait()

	for _, ty := range results {
		require.Same(t, results[0], ty)
	}
}

func TestTypeOf_Layout(t *testing.T) {
	ty := TypeOf[Position]()

	require.Equal(t, "erased.Position", ty.Name)
	require.Equal(t, "erased.Position", ty.String())
	require.Equal(t, reflect.TypeFor[Position](), ty.Type)
	require.Equal(t, Layout{Size: 16, Align: 8}, ty.Layout())

	require.Equal(t, uintptr(0), TypeOf[struct{}]().Size)
	require.Equal(t, uintptr(1), TypeOf[byte]().Size)
}

func TestTypeOf_HasPointers(t *testing.T) {
	cases := []struct {
		Type     *Type
		Expected bool
	}{
		{TypeOf[int](), false},
		{TypeOf[Position](), false},
		{TypeOf[[4]Position](), false},
		{TypeOf[[0]*int](), false},
		{TypeOf[Name](), true},
		{TypeOf[*int](), true},
		{TypeOf[[]int](), true},
		{TypeOf[map[int]int](), true},
		{TypeOf[any](), true},
		{TypeOf[func()](), true},
		{TypeOf[[2]string](), true},
	}

	for _, tc := range cases {
		t.Run(tc.Type.Name, func(t *testing.T) {
			require.Equal(t, tc.Expected, tc.Type.HasPointers)
		})
	}
}

func TestLookup(t *testing.T) {
	ty := TypeOf[Name]()

	found, ok := Lookup(ty.Id)
	require.True(t, ok)
	require.Same(t, ty, found)

	_, ok = Lookup(0)
	require.False(t, ok)
}

func TestType_Drop(t *testing.T) {
	require.Nil(t, TypeOf[Position]().Drop)

	t.Run("value receiver", func(t *testing.T) {
		var drops int
		value := counter{drops: &drops}

		TypeOf[counter]().Destroy(unsafe.Pointer(&value))
		require.Equal(t, 1, drops)
		require.Nil(t, value.drops)
	})

	t.Run("pointer receiver", func(t *testing.T) {
		var drops int
		value := handle{drops: &drops}

		TypeOf[handle]().Destroy(unsafe.Pointer(&value))
		require.Equal(t, 1, drops)
	})

	t.Run("pointer type", func(t *testing.T) {
		var drops int
		value := &handle{drops: &drops}

		TypeOf[*handle]().Destroy(unsafe.Pointer(&value))
		require.Equal(t, 1, drops)
		require.Nil(t, value)

		// nil pointers are skipped
		TypeOf[*handle]().Destroy(unsafe.Pointer(&value))
		require.Equal(t, 1, drops)
	})

	t.Run("interface", func(t *testing.T) {
		var drops int

		var value fmt.Stringer
		TypeOf[fmt.Stringer]().Destroy(unsafe.Pointer(&value))

		var dropper any = counter{drops: &drops}
		TypeOf[any]().Destroy(unsafe.Pointer(&dropper))
		require.Equal(t, 1, drops)
		require.Nil(t, dropper)
	})
}

func TestType_Move(t *testing.T) {
	source := Name{Value: "foo"}
	var target Name

	TypeOf[Name]().Move(unsafe.Pointer(&target), unsafe.Pointer(&source))
	require.Equal(t, "foo", target.Value)

	sourcePos := Position{X: 1, Y: 2}
	var targetPos Position

	TypeOf[Position]().Move(unsafe.Pointer(&targetPos), unsafe.Pointer(&sourcePos))
	require.Equal(t, sourcePos, targetPos)
}

func BenchmarkTypeOf(b *testing.B) {
	var dummy TypeId

	for b.Loop() {
		dummy += TypeOf[Position]().Id
	}
}
