package ptr

// FromString returns pointer to string
func FromString(s string) *string {
	return &s
}

// String returns value of pointer or empty string
func String(s *string) string {
	return StringOr(s, "")
}

// StringOr returns value of pointer or alternative value
func StringOr(s *string, or string) string {
	if s == nil {
		return or
	}
	return *s
}

// Bool returns value of pointer or false
func Bool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}

// Int returns value of pointer or zero
func Int(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
