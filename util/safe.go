package util

// Safe returns the zero value of T if nil
func Safe[T any](input *T) T {
	var zero T
	if input == nil {
		return zero
	}
	return *input
}

// SafeString returns empty string if null
func SafeString(input *string) string {
	return Safe(input)
}

// NilIfEmpty returns nil for an empty string, else a reference to it
func NilIfEmpty(input string) *string {
	if input == "" {
		return nil
	}
	return &input
}
