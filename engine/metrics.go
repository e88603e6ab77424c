package engine

import "time"

// Observer defines the interface for observing dispatches.
type Observer interface {
	// OnDispatch is called after an operation over elements values completes.
	OnDispatch(op string, strategy Strategy, elements int, duration time.Duration)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (NoopObserver) OnDispatch(op string, strategy Strategy, elements int, duration time.Duration) {}
