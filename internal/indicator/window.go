package indicator

// Window is a fixed-capacity FIFO. Pushing into a full window evicts the
// oldest element. Values returns elements oldest first.
type Window[T any] struct {
	buf   []T
	head  int
	count int
}

func NewWindow[T any](capacity int) *Window[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Window[T]{buf: make([]T, capacity)}
}

func (w *Window[T]) Push(v T) {
	idx := (w.head + w.count) % len(w.buf)
	w.buf[idx] = v

	if w.count < len(w.buf) {
		w.count++

		return
	}

	w.head = (w.head + 1) % len(w.buf)
}

func (w *Window[T]) Len() int {
	return w.count
}

func (w *Window[T]) Cap() int {
	return len(w.buf)
}

// At returns the i-th element, 0 being the oldest. Negative indexes count
// from the newest, so At(-1) is the latest element.
func (w *Window[T]) At(i int) T {
	if i < 0 {
		i += w.count
	}

	if i < 0 || i >= w.count {
		panic("indicator: window index out of range")
	}

	return w.buf[(w.head+i)%len(w.buf)]
}

// Last returns the newest element and false when the window is empty.
func (w *Window[T]) Last() (T, bool) {
	var zero T
	if w.count == 0 {
		return zero, false
	}

	return w.At(-1), true
}

// Values copies the contents, oldest first.
func (w *Window[T]) Values() []T {
	out := make([]T, w.count)
	for i := range w.count {
		out[i] = w.At(i)
	}

	return out
}

func (w *Window[T]) Clear() {
	var zero T
	for i := range w.buf {
		w.buf[i] = zero
	}

	w.head = 0
	w.count = 0
}
