// Package catalog serves the predefined services and the categories offered
// to providers.
package catalog

import (
	"context"
	"slices"
	"strings"
)

// Item is a predefined service.
type Item struct {
	ID       string
	Name     string
	Category string
}

// Service lists the catalog.
type Service interface {
	Items(ctx context.Context) ([]Item, error)
	Categories(ctx context.Context) ([]string, error)
}

// Static is a fixed, sorted catalog.
type Static struct {
	items      []Item
	categories []string
}

// DefaultItems is the built-in catalog.
var DefaultItems = []Item{
	{ID: "home-cleaning", Name: "Cleaning", Category: "Home"},
	{ID: "home-ironing", Name: "Ironing", Category: "Home"},
	{ID: "home-plumbing", Name: "Plumbing", Category: "Home"},
	{ID: "home-electrical", Name: "Electrical", Category: "Home"},
	{ID: "home-painting", Name: "Painting", Category: "Home"},
	{ID: "outdoor-gardening", Name: "Gardening", Category: "Outdoor"},
	{ID: "outdoor-pool", Name: "Pool Maintenance", Category: "Outdoor"},
	{ID: "outdoor-tree-felling", Name: "Tree Felling", Category: "Outdoor"},
	{ID: "beauty-hair", Name: "Hair Styling", Category: "Beauty"},
	{ID: "beauty-nails", Name: "Nails", Category: "Beauty"},
	{ID: "beauty-makeup", Name: "Makeup", Category: "Beauty"},
	{ID: "wellness-massage", Name: "Massage", Category: "Wellness"},
	{ID: "wellness-training", Name: "Personal Training", Category: "Wellness"},
	{ID: "auto-car-wash", Name: "Car Wash", Category: "Automotive"},
	{ID: "auto-mechanic", Name: "Mobile Mechanic", Category: "Automotive"},
	{ID: "events-catering", Name: "Catering", Category: "Events"},
	{ID: "events-photography", Name: "Photography", Category: "Events"},
	{ID: "education-tutoring", Name: "Tutoring", Category: "Education"},
}

// NewStatic builds a catalog from items, ordered by category then name.
// Categories are derived from the items plus extra.
func NewStatic(items []Item, extra ...string) *Static {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		if c := strings.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	var cats []string
	for _, it := range sorted {
		cats = append(cats, it.Category)
	}
	cats = append(cats, extra...)
	slices.Sort(cats)
	cats = slices.Compact(cats)

	return &Static{items: sorted, categories: cats}
}

// NewDefault returns the built-in catalog. "Other" is always available for
// custom services.
func NewDefault() *Static {
	return NewStatic(DefaultItems, "Other")
}

func (s *Static) Items(context.Context) ([]Item, error) {
	return slices.Clone(s.items), nil
}

func (s *Static) Categories(context.Context) ([]string, error) {
	return slices.Clone(s.categories), nil
}

// Compile-time interface check
var _ Service = (*Static)(nil)
