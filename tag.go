package injection

// Taggable is anything carrying a metadata bag: recipes and wrapped
// callables.
type Taggable interface {
	GetTag(tag any) (any, bool)
	SetTag(tag any, val any)
}

// Tag is a type-safe key for metadata attached to recipes and wrapped
// callables. Metadata never participates in resolution.
type Tag[T any] struct {
	key string
}

// NewTag creates a new tag with the given key.
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging).
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from a tagged entity.
func (t Tag[T]) Get(entity Taggable) (T, bool) {
	val, ok := entity.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// MustGet retrieves the tag value or panics if not found.
func (t Tag[T]) MustGet(entity Taggable) T {
	val, ok := t.Get(entity)
	if !ok {
		panic("tag " + t.key + " not found")
	}
	return val
}

// GetOrDefault retrieves the tag value or returns a default.
func (t Tag[T]) GetOrDefault(entity Taggable, defaultVal T) T {
	if val, ok := t.Get(entity); ok {
		return val
	}
	return defaultVal
}

// Set stores the tag value on a tagged entity.
func (t Tag[T]) Set(entity Taggable, val T) {
	entity.SetTag(t, val)
}
