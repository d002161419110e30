// Package channel provides generic channel interfaces for decoupled communication
// between the synthesis loop and background shippers.
package channel

// Receiver provides read access to a channel.
type Receiver[T any] interface {
	Receive() <-chan T
	Len() int
}

// Sender provides write access to a channel. TrySend reports false instead
// of blocking when the channel cannot accept the value.
type Sender[T any] interface {
	Send(T)
	TrySend(T) bool
}

// Channel combines read and write access.
type Channel[T any] interface {
	Receiver[T]
	Sender[T]
	Close()
}
