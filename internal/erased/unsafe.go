package erased

import "unsafe"

func rawCopy(to, from unsafe.Pointer, size uintptr) {
	dst := unsafe.Slice((*byte)(to), size)
	src := unsafe.Slice((*byte)(from), size)
	copy(dst, src)
}
