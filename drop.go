package imposter

import "github.com/oliverbestmann/imposter/internal/erased"

// Dropper can be implemented by a type to get notified when an Imposter
// or a Vec destroys a value of that type. Drop is called exactly once per value.
// It is not called for values that are moved out, e.g. using Downcast or Remove.
//
// If an Imposter or Vec becomes unreachable without being consumed or dropped,
// Drop is called by the runtime on a separate cleanup goroutine, concurrently
// with the rest of the program.
type Dropper = erased.Dropper

// Type describes an erased type: its size, alignment, identity and destructor.
type Type = erased.Type

// TypeId identifies an erased type. Two values have the same type
// if and only if their TypeId is equal.
type TypeId = erased.TypeId

// Layout describes size and alignment of an erased type.
type Layout = erased.Layout

// TypeOf returns the Type of T.
func TypeOf[T any]() *Type {
	return erased.TypeOf[T]()
}

// TypeIdOf returns the TypeId of T.
func TypeIdOf[T any]() TypeId {
	return erased.TypeOf[T]().Id
}
