// Package menu holds the read-only views the browsing screen renders.
package menu

import "github.com/vbonduro/menuboard/internal/domain"

// Tab is a browsing tab label.
type Tab string

const (
	TabStarters Tab = "Starters"
	TabMains    Tab = "Mains"
	TabDesserts Tab = "Desserts"
)

var tabCategories = map[Tab]domain.Category{
	TabStarters: domain.CategoryStarter,
	TabMains:    domain.CategoryMain,
	TabDesserts: domain.CategoryDessert,
}

// Tabs returns the tabs in display order.
func Tabs() []Tab {
	return []Tab{TabStarters, TabMains, TabDesserts}
}

// ParseTab maps a tab label to its category. ok is false for unknown labels.
func ParseTab(label string) (domain.Category, bool) {
	c, ok := tabCategories[Tab(label)]
	return c, ok
}

// FilterByCategory returns the dishes of list that belong to tab, in their
// original order. An unknown tab matches nothing. The result never aliases
// list and is never nil.
func FilterByCategory(list domain.MenuList, tab string) []domain.Dish {
	out := make([]domain.Dish, 0)
	category, ok := ParseTab(tab)
	if !ok {
		return out
	}
	for _, d := range list {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out
}
