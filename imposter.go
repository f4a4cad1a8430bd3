// Package imposter stores values of arbitrary types with their static type erased.
//
// An Imposter holds a single value. A Vec holds any number of values of one type,
// packed next to each other in a single block of memory. Both remember the type of
// their values and check it on every typed access, a mismatch never destroys the
// stored value.
//
// Neither type is safe for concurrent use.
package imposter

import (
	"fmt"
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/oliverbestmann/imposter/internal/erased"
)

// Imposter is a type erased wrapper around any kind of value.
type Imposter struct {
	noCopy noCopy

	cell    *cell
	cleanup runtime.Cleanup
}

type cell struct {
	ty *erased.Type

	// points to a value of type ty, nil once the value is gone
	data unsafe.Pointer
}

func (c *cell) destroy() {
	if c.data == nil {
		return
	}

	data := c.data
	c.data = nil

	if c.ty.Drop != nil {
		c.ty.Drop(data)
	}
}

// New creates a new Imposter owning value. The caller hands over ownership of
// the value and must not Drop its own copy afterward.
func New[T any](value T) *Imposter {
	data := new(T)
	*data = value

	imp := &Imposter{
		cell: &cell{
			ty:   erased.TypeOf[T](),
			data: unsafe.Pointer(data),
		},
	}

	// runs the destructor if the imposter is lost without being consumed
	imp.cleanup = runtime.AddCleanup(imp, (*cell).destroy, imp.cell)

	return imp
}

// Downcast moves the value out of the Imposter. The destructor of the value
// is not called, the caller is the new owner.
//
// If T does not match the erased type, ErrTypeMismatch is returned and the
// Imposter still holds its value.
func Downcast[T any](imp *Imposter) (T, error) {
	var zero T

	if imp.Consumed() {
		return zero, ErrConsumed
	}

	if ty := erased.TypeOf[T](); !ty.Is(imp.cell.ty) {
		return zero, fmt.Errorf("downcast %s to %s: %w", imp.cell.ty, ty, ErrTypeMismatch)
	}

	value := *(*T)(imp.cell.data)
	imp.consume()

	return value, nil
}

// DowncastRef returns a pointer to the value held by the Imposter. The value
// stays owned by the Imposter.
//
// The Imposter must stay reachable for as long as the pointer is used, e.g. by
// calling runtime.KeepAlive on it. Otherwise the runtime may destroy the value
// while the pointer is still in use.
func DowncastRef[T any](imp *Imposter) (*T, bool) {
	if !Is[T](imp) {
		return nil, false
	}

	return (*T)(imp.cell.data), true
}

// Is returns true if the Imposter holds a value of type T.
func Is[T any](imp *Imposter) bool {
	return !imp.Consumed() && erased.TypeOf[T]().Is(imp.cell.ty)
}

// Consumed returns true if the value was moved out, dropped or forgotten.
func (imp *Imposter) Consumed() bool {
	return imp == nil || imp.cell.data == nil
}

func (imp *Imposter) TypeId() TypeId {
	return imp.cell.ty.Id
}

func (imp *Imposter) Type() *Type {
	return imp.cell.ty
}

func (imp *Imposter) Layout() Layout {
	return imp.cell.ty.Layout()
}

// Drop destroys the value held by the Imposter. Calling Drop on
// a consumed Imposter does nothing.
func (imp *Imposter) Drop() {
	if imp.Consumed() {
		return
	}

	imp.cleanup.Stop()
	imp.cell.destroy()
}

// Forget releases the value without calling its destructor.
func (imp *Imposter) Forget() {
	if imp.Consumed() {
		return
	}

	imp.consume()
}

// consume marks the value as moved out.
func (imp *Imposter) consume() {
	imp.cleanup.Stop()
	imp.cell.data = nil
}

func (imp *Imposter) String() string {
	if imp.Consumed() {
		return "Imposter(consumed)"
	}

	return fmt.Sprintf("Imposter[%s]", imp.cell.ty)
}

func (imp *Imposter) LogValue() slog.Value {
	if imp.Consumed() {
		return slog.GroupValue(slog.Bool("consumed", true))
	}

	return slog.GroupValue(
		slog.String("type", imp.cell.ty.Name),
		slog.String("size", humanize.Bytes(uint64(imp.cell.ty.Size))),
	)
}
