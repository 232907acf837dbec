package slice_test

import (
	"testing"

	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

func TestContains(t *testing.T) {
	_slice := []string{"foo", "bar"}
	if !slice.Contains(_slice, "foo") {
		t.Errorf("Contains should return true for existing element")
	}
	if slice.Contains(_slice, "baz") {
		t.Errorf("Contains should return false for non-existing element")
	}
}

func TestUnique(t *testing.T) {
	got := slice.Unique([]string{"b", "a", "b", "c", "a"})
	expected := []string{"a", "b", "c"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i, v := range expected {
		if got[i] != v {
			t.Errorf("Expected %s, got %s", v, got[i])
		}
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"z": 1, "a": 2, "m": 3}
	got := slice.SortedKeys(m)
	if len(got) != 3 || got[0] != "a" || got[1] != "m" || got[2] != "z" {
		t.Errorf("Unexpected keys %v", got)
	}
}

func TestContainsMapKey(t *testing.T) {
	m := map[string]string{"a": "A", "b": "B"}
	if !slice.ContainsMapKey(m, "a") {
		t.Errorf("ContainsMapKey should return true for existing key")
	}
	if slice.ContainsMapKey(m, "c") {
		t.Errorf("ContainsMapKey should return false for non-existing key")
	}
}

func TestOrDefault(t *testing.T) {
	def := []string{"x86_64"}
	if got := slice.OrDefault(nil, def); len(got) != 1 || got[0] != "x86_64" {
		t.Errorf("Expected default, got %v", got)
	}
	if got := slice.OrDefault([]string{"s390x"}, def); got[0] != "s390x" {
		t.Errorf("Expected input, got %v", got)
	}
}
