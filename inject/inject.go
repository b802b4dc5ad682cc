package inject

import (
	"context"
	"sync"
)

// Provider produces a fresh T on every call.
type Provider[T any] func() T

// Get returns a new value from the provider.
func (p Provider[T]) Get() T { return p() }

// Lazy produces T on first use and memoizes it. Safe for concurrent use.
type Lazy[T any] struct {
	once sync.Once
	fn   func() T
	v    T
}

// MakeLazy wraps a producer function into a Lazy.
func MakeLazy[T any](fn func() T) *Lazy[T] {
	return &Lazy[T]{fn: fn}
}

// Get returns the memoized value, computing it on first call.
func (l *Lazy[T]) Get() T {
	l.once.Do(func() {
		l.v = l.fn()
		l.fn = nil
	})
	return l.v
}

// Producer computes T asynchronously. Implementations are generated for
// production bindings; the context bounds the whole production chain.
type Producer[T any] func(ctx context.Context) (T, error)

// Get runs the producer.
func (p Producer[T]) Get(ctx context.Context) (T, error) { return p(ctx) }

// Produced holds the settled result of a production: the value or the error
// that produced it. Consumers inspect the error instead of having the
// production chain fail as a whole.
type Produced[T any] struct {
	value T
	err   error
}

// Success wraps a successfully produced value.
func Success[T any](v T) Produced[T] { return Produced[T]{value: v} }

// Failure wraps a failed production.
func Failure[T any](err error) Produced[T] { return Produced[T]{err: err} }

// Get returns the produced value or the production error.
func (p Produced[T]) Get() (T, error) { return p.value, p.err }

// Optional holds a value that may have no binding. The zero value is absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Of wraps a present value.
func Of[T any](v T) Optional[T] { return Optional[T]{value: v, present: true} }

// Absent returns the empty optional.
func Absent[T any]() Optional[T] { return Optional[T]{} }

// Present reports whether a value is held.
func (o Optional[T]) Present() bool { return o.present }

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.present }

// OrElse returns the held value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}
	return fallback
}

// MembersInjector injects dependencies into the fields of an existing
// instance.
type MembersInjector[T any] func(target T)

// InjectMembers runs the injector on target.
func (m MembersInjector[T]) InjectMembers(target T) { m(target) }
