package batch

// Observer receives the outcome of every item. Callbacks are never invoked
// concurrently and arrive in the order items completed.
type Observer[T any] interface {
	Next(item T)
	Error(item T, err error)
	// Complete is called once each time the queue is drained while running.
	Complete()
}

// StateObserver is optionally implemented by observers that want to hear
// about state changes. Its calls are ordered with the item callbacks.
type StateObserver interface {
	StateChanged(from, to State)
}

// Funcs adapts plain functions to Observer and StateObserver. Nil fields are
// skipped.
type Funcs[T any] struct {
	OnNext     func(item T)
	OnError    func(item T, err error)
	OnComplete func()
	OnState    func(from, to State)
}

func (f Funcs[T]) Next(item T) {
	if f.OnNext != nil {
		f.OnNext(item)
	}
}

func (f Funcs[T]) Error(item T, err error) {
	if f.OnError != nil {
		f.OnError(item, err)
	}
}

func (f Funcs[T]) Complete() {
	if f.OnComplete != nil {
		f.OnComplete()
	}
}

func (f Funcs[T]) StateChanged(from, to State) {
	if f.OnState != nil {
		f.OnState(from, to)
	}
}
