// Package line provides linear ramps that cost one addition per step.
//
// A Line can glide an oscillator from one frequency to another: compute the
// phase increments for both ends once, then let the Line move the increment
// with a single addition on every control tick.
package line

// Number is any integer or floating point type, including named types such
// as the fixmath formats.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Line steps linearly from its current value toward a target.
// The zero value holds 0 with a step of 0.
//
// A Line is not safe for concurrent use; each instance should have one owner.
type Line[T Number] struct {
	current T
	step    T
}

// Next advances one step and returns the new value. Nothing stops the Line at
// its target: calling Next past the requested step count keeps extrapolating.
func (l *Line[T]) Next() T {
	l.current += l.step
	return l.current
}

// Set sets the current value. The Line continues from here with the step
// size it already has.
func (l *Line[T]) Set(value T) {
	l.current = value
}

// SetTarget calculates the step size needed to reach target from the current
// value in the given number of steps. The current value is not changed.
//
// The division is done in floating point and truncated toward zero for
// integer types, so integer Lines may fall short of target by up to steps-1
// units. steps must be at least 1: zero yields an infinite step for floating
// point types and an undefined one for integers.
func (l *Line[T]) SetTarget(target T, steps int) {
	step := (float64(target) - float64(l.current)) / float64(steps)
	if isFloat[T]() {
		l.step = T(step)
		return
	}
	// Going through int64 lets unsigned Lines descend: the negative step wraps
	// and the addition in Next wraps back.
	l.step = T(int64(step))
}

// SetRamp sets a new starting value and calculates the step size needed to
// reach target from it in the given number of steps.
func (l *Line[T]) SetRamp(start, target T, steps int) {
	l.Set(start)
	l.SetTarget(target, steps)
}

// Value returns the current value without stepping.
func (l *Line[T]) Value() T {
	return l.current
}

// Step returns the current step size.
func (l *Line[T]) Step() T {
	return l.step
}

// isFloat reports whether T is a floating point type: halving one only
// yields a non-zero value for floats.
func isFloat[T Number]() bool {
	var one T = 1
	return one/2 != 0
}
