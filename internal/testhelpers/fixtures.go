package testhelpers

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pageza/masterchef/backend/internal/pantry"
)

// Fixtures generates reproducible fake data
type Fixtures struct {
	faker *gofakeit.Faker
}

func NewFixtures(seed int64) *Fixtures {
	return &Fixtures{faker: gofakeit.New(seed)}
}

// Email returns a unique-looking address
func (f *Fixtures) Email() string {
	return strings.ToLower(f.faker.Username()) + "@example.com"
}

// Password returns a password that satisfies sign-up rules
func (f *Fixtures) Password() string {
	return f.faker.Password(true, true, true, false, false, 12)
}

// Ingredients returns n distinct ingredient names that pass validation
func (f *Fixtures) Ingredients(n int) []string {
	list := &pantry.List{}
	for attempts := 0; list.Len() < n && attempts < n*50; attempts++ {
		name := f.faker.Vegetable()
		if attempts%2 == 1 {
			name = f.faker.Fruit()
		}
		_ = list.Add(strings.ToLower(name))
	}
	// Fall back to numbered names if the word lists ran dry
	for i := 0; list.Len() < n; i++ {
		_ = list.Add("ingredient " + strings.Repeat("x", i+1))
	}
	return list.Items()
}

// RecipeMarkdown returns a recipe titled title using ingredients
func (f *Fixtures) RecipeMarkdown(title string, ingredients []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n%s\n\n## Ingredients\n\n", title, f.faker.Sentence(12))
	for _, item := range ingredients {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	sb.WriteString("\n## Instructions\n\n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&sb, "%d. %s\n", i, f.faker.Sentence(8))
	}
	return sb.String()
}

// Title returns a plausible dish name
func (f *Fixtures) Title() string {
	return f.faker.Dinner()
}
