package domain

// Optional is a tagged patch value: Unset (not sent), SetTo(v), or SetNull (sent as null).
type Optional[T any] struct {
	set   bool
	value *T
}

// Unset returns a field that was not sent.
func Unset[T any]() Optional[T] {
	return Optional[T]{}
}

// SetTo returns a field sent with a concrete value.
func SetTo[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: &v}
}

// SetNull returns a field explicitly sent as null.
func SetNull[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// IsSet reports whether the field was sent at all.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsNull reports whether the field was sent as null.
func (o Optional[T]) IsNull() bool {
	return o.set && o.value == nil
}

// Get returns the value and whether one is present.
func (o Optional[T]) Get() (T, bool) {
	if o.value == nil {
		var zero T
		return zero, false
	}
	return *o.value, true
}

// Ptr returns the value as a pointer, nil when unset or null.
func (o Optional[T]) Ptr() *T {
	if o.value == nil {
		return nil
	}
	v := *o.value
	return &v
}

// Apply returns the field's new value given the current one.
func (o Optional[T]) Apply(current *T) *T {
	if !o.set {
		return current
	}
	return o.Ptr()
}
