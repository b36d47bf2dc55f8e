package utils

// Set is an insertion-tracking set of comparable keys.
// It is not safe for concurrent use.
type Set[K comparable] struct {
	seen map[K]struct{}
}

// NewSet creates an empty Set sized for n keys.
func NewSet[K comparable](n int) *Set[K] {
	return &Set[K]{seen: make(map[K]struct{}, n)}
}

// Add returns true if the key was newly added, false if already present.
func (s *Set[K]) Add(k K) bool {
	if _, exists := s.seen[k]; exists {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// Contains returns true if the key is present.
func (s *Set[K]) Contains(k K) bool {
	_, exists := s.seen[k]
	return exists
}

// Size returns the number of unique keys tracked.
func (s *Set[K]) Size() int {
	return len(s.seen)
}
