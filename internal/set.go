package internal

import "sort"

type StringSet struct {
	m map[string]struct{}
}

func NewStringSet() *StringSet {
	return &StringSet{
		m: make(map[string]struct{}),
	}
}

func (s *StringSet) Add(item string) {
	s.m[item] = struct{}{}
}

func (s *StringSet) Contains(item string) bool {
	_, exists := s.m[item]
	return exists
}

func (s *StringSet) Len() int {
	return len(s.m)
}

// IntSet is a set of small integer ids. Add reports whether the id was new.
type IntSet struct {
	m map[int]struct{}
}

func NewIntSet(items ...int) *IntSet {
	s := &IntSet{
		m: make(map[int]struct{}, len(items)),
	}
	for _, item := range items {
		s.m[item] = struct{}{}
	}
	return s
}

func (s *IntSet) Add(item int) bool {
	if _, exists := s.m[item]; exists {
		return false
	}
	s.m[item] = struct{}{}
	return true
}

func (s *IntSet) Contains(item int) bool {
	_, exists := s.m[item]
	return exists
}

func (s *IntSet) Len() int {
	return len(s.m)
}

// Sorted returns the members in ascending order.
func (s *IntSet) Sorted() []int {
	elements := make([]int, 0, len(s.m))
	for item := range s.m {
		elements = append(elements, item)
	}
	sort.Ints(elements)
	return elements
}
