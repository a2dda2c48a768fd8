package output

// T renders user-facing text. key identifies a message in the catalogue,
// locale is the caller's Discord locale (e.g. "fr", "en-US") and data fills
// template placeholders; data may be nil.
type T interface {
	T(locale, key string, data map[string]any) string
}
