//go:build debug

package channel

// New creates a new channel.
// Debug builds return an unbuffered channel (ignores size) so lost writes
// surface immediately.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
