// Package pantry holds the ingredient list a user builds before asking for
// a recipe, with the gate that decides when generation is allowed.
package pantry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MinIngredients is how many distinct ingredients unlock generation
const MinIngredients = 5

var (
	ErrEmptyIngredient     = errors.New("ingredient cannot be empty")
	ErrInvalidIngredient   = errors.New("ingredients may only contain letters, spaces and hyphens")
	ErrDuplicateIngredient = errors.New("ingredient already added")
)

var ingredientPattern = regexp.MustCompile(`^[a-zA-Z\s\-]+$`)

// Valid reports whether s is an acceptable ingredient name after trimming
func Valid(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && ingredientPattern.MatchString(s)
}

// List is an ordered, case-sensitively de-duplicated ingredient list.
// The zero value is ready to use.
type List struct {
	items []string
}

// NewList builds a list, skipping entries Add would reject
func NewList(items ...string) *List {
	l := &List{}
	for _, item := range items {
		_ = l.Add(item)
	}
	return l
}

// Add validates and appends raw
func (l *List) Add(raw string) error {
	item := strings.TrimSpace(raw)
	if item == "" {
		return ErrEmptyIngredient
	}
	if !ingredientPattern.MatchString(item) {
		return fmt.Errorf("%w: %q", ErrInvalidIngredient, item)
	}
	for _, existing := range l.items {
		if existing == item {
			return fmt.Errorf("%w: %q", ErrDuplicateIngredient, item)
		}
	}
	l.items = append(l.items, item)
	return nil
}

// Remove drops name and reports whether it was present
func (l *List) Remove(name string) bool {
	for i, existing := range l.items {
		if existing == name {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the ingredients in insertion order
func (l *List) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int { return len(l.items) }

// Progress is min(100, count/5*100) as a whole percentage
func (l *List) Progress() int {
	return Progress(len(l.items))
}

// Ready reports whether enough ingredients have been added to generate
func (l *List) Ready() bool {
	return len(l.items) >= MinIngredients
}

// Status is the indicator label: "n/5" until ready, then "ready"
func (l *List) Status() string {
	if l.Ready() {
		return "ready"
	}
	return fmt.Sprintf("%d/%d", len(l.items), MinIngredients)
}

// Progress computes the gate percentage for count ingredients
func Progress(count int) int {
	if count <= 0 {
		return 0
	}
	p := count * 100 / MinIngredients
	if p > 100 {
		return 100
	}
	return p
}
