package erased

import (
	"log/slog"
	"maps"
	"reflect"
	"sync/atomic"
	"unsafe"
)

// TypeId identifies an erased type at runtime. Ids are dense and assigned
// on first use, starting at 1.
type TypeId uint32

// Dropper is implemented by types that need to be finalized when the value
// held by an erased cell or buffer slot is destroyed.
type Dropper interface {
	Drop()
}

var dropperType = reflect.TypeFor[Dropper]()

// Layout describes the memory requirements of a single value.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Type describes how to interpret and destroy the memory of an erased value.
// There is exactly one *Type per Go type, see TypeOf.
type Type struct {
	Name string
	Type reflect.Type

	// The Id of the type
	Id TypeId

	Size  uintptr
	Align uintptr

	// Drop finalizes the value at the given pointer in place. It is nil
	// if the type does not implement Dropper.
	Drop func(ptr unsafe.Pointer)

	// HasPointers indicates that a value of the type contains pointers, e.g.
	// by having a field of type *T, a string, a slice or a map value.
	HasPointers bool

	move func(to, from unsafe.Pointer)
	zero func(ptr unsafe.Pointer)

	sliceType reflect.Type
}

func (t *Type) String() string {
	return t.Name
}

func (t *Type) Layout() Layout {
	return Layout{Size: t.Size, Align: t.Align}
}

// Is reports whether both descriptors denote the same type.
func (t *Type) Is(other *Type) bool {
	return t.Id == other.Id
}

// Move copies the value at from into to. Ownership of the value moves with it,
// the caller must not destroy the value at from afterward.
func (t *Type) Move(to, from unsafe.Pointer) {
	if t.Size == 0 || to == from {
		return
	}

	if !t.HasPointers {
		rawCopy(to, from, t.Size)
		return
	}

	t.move(to, from)
}

// Zero clears the memory at ptr without running the destructor.
func (t *Type) Zero(ptr unsafe.Pointer) {
	if t.Size == 0 {
		return
	}

	t.zero(ptr)
}

// Destroy runs the destructor on the value at ptr and clears its memory.
func (t *Type) Destroy(ptr unsafe.Pointer) {
	if t.Drop != nil {
		t.Drop(ptr)
	}

	t.Zero(ptr)
}

var types atomic.Pointer[map[unsafe.Pointer]*Type]

func init() {
	// initialize the lookup table
	types.Store(&map[unsafe.Pointer]*Type{})
}

// TypeOf returns the descriptor of T, registering it on first use.
func TypeOf[T any]() *Type {
	reflectType := reflect.TypeFor[T]()
	ptrToType := abiTypePointerTo(reflectType)

	if cached, ok := (*types.Load())[ptrToType]; ok {
		return cached
	}

	return ensureType(ptrToType, makeType[T])
}

// Lookup returns the descriptor registered for the given id.
func Lookup(id TypeId) (*Type, bool) {
	for _, ty := range *types.Load() {
		if ty.Id == id {
			return ty, true
		}
	}

	return nil, false
}

func ensureType(ptrToType unsafe.Pointer, makeType func(id TypeId) *Type) *Type {
	for {
		previousTypes := types.Load()
		if cached, ok := (*previousTypes)[ptrToType]; ok {
			return cached
		}

		newTypeId := TypeId(len(*previousTypes) + 1)

		newType := makeType(newTypeId)

		newTypes := maps.Clone(*previousTypes)
		newTypes[ptrToType] = newType

		if types.CompareAndSwap(previousTypes, &newTypes) {
			slog.Debug(
				"New erased type registered",
				slog.String("name", newType.Name),
				slog.Int("id", int(newType.Id)),
				slog.Uint64("size", uint64(newType.Size)),
				slog.Uint64("align", uint64(newType.Align)),
			)

			return newType
		}
	}
}

func abiTypePointerTo(t reflect.Type) unsafe.Pointer {
	type eface struct {
		typ, val unsafe.Pointer
	}

	// a reflect.Type is backed by an *rType. The rType contains a abi.Type as
	// its first value. This means, that a *rType can be re-interpreted as *abi.Type
	return (*eface)(unsafe.Pointer(&t)).val
}

func makeType[T any](id TypeId) *Type {
	reflectType := reflect.TypeFor[T]()

	return &Type{
		Id:          id,
		Type:        reflectType,
		Name:        reflectType.String(),
		Size:        reflectType.Size(),
		Align:       uintptr(reflectType.Align()),
		Drop:        dropFuncOf[T](reflectType),
		HasPointers: typeHasPointers(reflectType),
		move:        unsafeMoveValue[T],
		zero:        unsafeZeroValue[T],
		sliceType:   reflect.SliceOf(reflectType),
	}
}

func unsafeMoveValue[T any](to, from unsafe.Pointer) {
	*(*T)(to) = *(*T)(from)
}

func unsafeZeroValue[T any](ptr unsafe.Pointer) {
	var zero T
	*(*T)(ptr) = zero
}

func dropFuncOf[T any](t reflect.Type) func(ptr unsafe.Pointer) {
	switch {
	case reflect.PointerTo(t).Implements(dropperType):
		// covers both value and pointer receivers
		return func(ptr unsafe.Pointer) {
			any((*T)(ptr)).(Dropper).Drop()
		}

	case t.Kind() == reflect.Pointer && t.Implements(dropperType):
		return func(ptr unsafe.Pointer) {
			if *(*unsafe.Pointer)(ptr) == nil {
				return
			}

			any(*(*T)(ptr)).(Dropper).Drop()
		}

	case t.Kind() == reflect.Interface:
		// the dynamic type decides
		return func(ptr unsafe.Pointer) {
			if dropper, ok := any(*(*T)(ptr)).(Dropper); ok {
				dropper.Drop()
			}
		}
	}

	return nil
}

func typeHasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.String, reflect.Slice,
		reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true

	case reflect.Array:
		return t.Len() > 0 && typeHasPointers(t.Elem())

	case reflect.Struct:
		for idx := range t.NumField() {
			if typeHasPointers(t.Field(idx).Type) {
				return true
			}
		}

		return false

	default:
		return false
	}
}
