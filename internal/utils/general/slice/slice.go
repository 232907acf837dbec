package slice

import (
	"cmp"
	"slices"
)

// Contains reports whether item is present in s.
func Contains[T comparable](s []T, item T) bool {
	return slices.Contains(s, item)
}

// Unique returns the distinct elements of s in sorted order.
func Unique[T cmp.Ordered](s []T) []T {
	out := slices.Clone(s)
	slices.Sort(out)
	return slices.Compact(out)
}

// SortedKeys returns the keys of m in sorted order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ContainsMapKey reports whether key is present in m.
func ContainsMapKey[K comparable, V any](m map[K]V, key K) bool {
	_, ok := m[key]
	return ok
}

// OrDefault returns s, or def when s is empty.
func OrDefault[T any](s []T, def []T) []T {
	if len(s) == 0 {
		return def
	}
	return s
}
