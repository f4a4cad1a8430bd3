package imposter

import (
	"fmt"
	"iter"
	"log/slog"
	"math"
	"runtime"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/oliverbestmann/imposter/internal/erased"
)

// Vec is a growable list of values of a single erased type. Values are
// stored next to each other in one block of memory.
//
// The methods of a Vec operate on erased values, the typed operations are
// package level functions taking the element type as a type parameter.
type Vec struct {
	noCopy noCopy

	*vecState
}

type vecState struct {
	ty     *erased.Type
	region erased.Region

	// slots [0, len) hold live values
	len int
}

// NewVec creates an empty Vec that holds values of type T.
// It does not allocate.
func NewVec[T any]() *Vec {
	return NewVecOf(erased.TypeOf[T]())
}

// NewVecOf creates an empty Vec that holds values of the given type.
func NewVecOf(ty *Type) *Vec {
	vec := &Vec{
		vecState: &vecState{
			ty:     ty,
			region: erased.MakeRegion(ty),
		},
	}

	// destroy remaining values if the vec is lost without calling Drop
	runtime.AddCleanup(vec, (*vecState).destroy, vec.vecState)

	return vec
}

// FromImposter creates a new Vec of the imposters type, holding the
// imposters value in its first slot. The imposter is consumed.
func FromImposter(imp *Imposter) (*Vec, error) {
	if imp.Consumed() {
		return nil, ErrConsumed
	}

	vec := NewVecOf(imp.cell.ty)
	if err := vec.PushImposter(imp); err != nil {
		return nil, err
	}

	return vec, nil
}

// Push appends item to the end of the Vec.
//
// If T is not the type of the Vec, ErrTypeMismatch is returned and the Vec is unchanged.
func Push[T any](vec *Vec, item T) error {
	if ty := erased.TypeOf[T](); !ty.Is(vec.ty) {
		return fmt.Errorf("push %s into vec of %s: %w", ty, vec.ty, ErrTypeMismatch)
	}

	if err := vec.ensureSpace(1); err != nil {
		return err
	}

	*(*T)(vec.region.Ptr(vec.len)) = item
	vec.len += 1

	return nil
}

// PushImposter moves the value of imp to the end of the Vec and consumes imp.
//
// If imp does not hold a value of the Vec's type, ErrTypeMismatch is returned
// and imp keeps its value.
func (vec *Vec) PushImposter(imp *Imposter) error {
	if imp.Consumed() {
		return ErrConsumed
	}

	if !imp.cell.ty.Is(vec.ty) {
		return fmt.Errorf("push %s into vec of %s: %w", imp.cell.ty, vec.ty, ErrTypeMismatch)
	}

	if err := vec.ensureSpace(1); err != nil {
		return err
	}

	vec.ty.Move(vec.region.Ptr(vec.len), imp.cell.data)
	vec.len += 1

	imp.consume()

	return nil
}

// Get returns a pointer to the value at index. The pointer stays valid until
// the Vec grows, a value is removed or the Vec is cleared. The Vec must stay
// reachable for as long as the pointer is used, e.g. by calling runtime.KeepAlive
// on it. Otherwise the runtime may destroy its values while the pointer is in use.
//
// Returns false if T is not the type of the Vec or index is out of bounds.
func Get[T any](vec *Vec, index int) (*T, bool) {
	ptr, ok := slotOf[T](vec, index)
	if !ok {
		return nil, false
	}

	return (*T)(ptr), true
}

// Remove moves the value at index out of the Vec. All following values
// move down by one slot. The destructor of the value is not called.
//
// Returns false and leaves the Vec unchanged if T is not the type of the Vec
// or index is out of bounds.
func Remove[T any](vec *Vec, index int) (T, bool) {
	ptr, ok := slotOf[T](vec, index)
	if !ok {
		var zero T
		return zero, false
	}

	value := *(*T)(ptr)

	vec.region.Shift(index+1, index, vec.len-index-1)
	vec.len -= 1
	vec.ty.Zero(vec.region.Ptr(vec.len))

	return value, true
}

// SwapRemove moves the value at index out of the Vec and fills the gap
// with the last value. This does not preserve the order of the values.
func SwapRemove[T any](vec *Vec, index int) (T, bool) {
	ptr, ok := slotOf[T](vec, index)
	if !ok {
		var zero T
		return zero, false
	}

	value := *(*T)(ptr)
	vec.fillFromLast(index)

	return value, true
}

// SwapDrop destroys the value at index and fills the gap with the last value.
// Returns false if index is out of bounds.
func (vec *Vec) SwapDrop(index int) bool {
	if uint(index) >= uint(vec.len) {
		return false
	}

	vec.ty.Destroy(vec.region.Ptr(index))
	vec.fillFromLast(index)

	return true
}

func (vec *Vec) fillFromLast(index int) {
	last := vec.len - 1

	vec.ty.Move(vec.region.Ptr(index), vec.region.Ptr(last))
	vec.ty.Zero(vec.region.Ptr(last))
	vec.len -= 1
}

// All iterates over pointers to all values in the Vec. Yields nothing if
// T is not the type of the Vec. The same rules as for Get apply to the pointers.
func All[T any](vec *Vec) iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		if !erased.TypeOf[T]().Is(vec.ty) {
			return
		}

		for idx := 0; idx < vec.len; idx++ {
			if !yield(idx, (*T)(vec.region.Ptr(idx))) {
				return
			}
		}
	}
}

// Reserve ensures that at least additional more values can be pushed
// without reallocating.
func (vec *Vec) Reserve(additional int) error {
	if additional <= 0 {
		return nil
	}

	return vec.ensureSpace(additional)
}

func (vec *Vec) Len() int {
	return vec.len
}

func (vec *Vec) Cap() int {
	return vec.region.Cap()
}

func (vec *Vec) IsEmpty() bool {
	return vec.len == 0
}

func (vec *Vec) TypeId() TypeId {
	return vec.ty.Id
}

func (vec *Vec) Type() *Type {
	return vec.ty
}

// Clear destroys all values in ascending order. The memory is kept for reuse.
func (vec *Vec) Clear() {
	vec.clear()
}

// Drop destroys all values and releases the memory of the Vec.
// The Vec can be reused afterward, it is empty.
func (vec *Vec) Drop() {
	vec.destroy()
}

func (vec *Vec) String() string {
	return fmt.Sprintf("Vec[%s](len=%d, cap=%d)", vec.ty, vec.len, vec.Cap())
}

func (vec *Vec) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", vec.ty.Name),
		slog.Int("len", vec.len),
		slog.Int("cap", vec.Cap()),
		slog.String("bytes", humanize.Bytes(uint64(vec.region.Bytes()))),
	)
}

func slotOf[T any](vec *Vec, index int) (unsafe.Pointer, bool) {
	if uint(index) >= uint(vec.len) {
		return nil, false
	}

	if !erased.TypeOf[T]().Is(vec.ty) {
		return nil, false
	}

	return vec.region.Ptr(index), true
}

// ensureSpace grows the region if it can not hold additional more values.
func (s *vecState) ensureSpace(additional int) error {
	capacity := s.region.Cap()
	if additional <= capacity-s.len {
		return nil
	}

	if s.len > math.MaxInt-additional || capacity > math.MaxInt/2 {
		return fmt.Errorf("grow vec of %s by %d: %w", s.ty, additional, ErrCapacityOverflow)
	}

	newCap := max(capacity*2, capacity+1, s.len+additional)

	return s.region.Resize(newCap, s.len)
}

func (s *vecState) clear() {
	n := s.len
	if n == 0 {
		return
	}

	// a panicking destructor must not lead to a second drop
	s.len = 0

	if drop := s.ty.Drop; drop != nil {
		for idx := range n {
			drop(s.region.Ptr(idx))
		}
	}

	s.region.Clear(0, n)
}

func (s *vecState) destroy() {
	s.clear()
	s.region.Release()
}
