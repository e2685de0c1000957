package sanitizer

// Apply creates functional composition pipeline for sanitization transformations.
func Apply[T any](value T, transforms ...func(T) T) T {
	result := value

	for _, transform := range transforms {
		result = transform(result)
	}

	return result
}

// Compose creates reusable sanitization pipelines that can be stored and reused.
// Preferred over repeated Apply calls when the same transformation chain is used multiple times.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T {
		return Apply(value, transforms...)
	}
}

// Field returns the pipeline applied to every free-text form field:
// trim, strip angle brackets, truncate to maxLen runes. Trimming is repeated
// after each step that can expose new edge whitespace, which keeps the
// pipeline idempotent. A non-positive maxLen disables truncation.
func Field(maxLen int) func(string) string {
	return Compose(
		Trim,
		RemoveControlChars,
		StripAngleBrackets,
		Trim,
		truncate(maxLen),
		Trim,
	)
}

// Line is Field for single-line values such as names: line breaks and
// whitespace runs collapse to one space, so the value is safe to place in a
// mail header.
func Line(maxLen int) func(string) string {
	return Compose(
		Trim,
		RemoveControlChars,
		StripAngleBrackets,
		SingleLine,
		truncate(maxLen),
		Trim,
	)
}

// Email returns the pipeline for address fields. Lowercasing runs before
// truncation because case folding can change the rune count.
func Email(maxLen int) func(string) string {
	return Compose(
		Trim,
		RemoveControlChars,
		StripAngleBrackets,
		TrimToLower,
		truncate(maxLen),
		Trim,
	)
}

func truncate(maxLen int) func(string) string {
	return func(s string) string {
		if maxLen <= 0 {
			return s
		}
		return MaxLength(s, maxLen)
	}
}
