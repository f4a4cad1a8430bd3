//go:build imposter_debug

package erased

const debug = true
