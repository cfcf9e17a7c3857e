package domain

import "fmt"

type Category string

const (
	CategoryStarter Category = "Starter"
	CategoryMain    Category = "Main"
	CategoryDessert Category = "Dessert"
)

// Categories lists the menu categories in display order.
var Categories = []Category{CategoryStarter, CategoryMain, CategoryDessert}

// ParseCategory returns the Category named by s. Matching is exact.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Dish is one menu entry. Price holds the amount formatted with two decimals
// and Image is an opaque photo reference, empty when no photo was picked.
type Dish struct {
	ID          string
	Name        string
	Description string
	Price       string
	Category    Category
	Image       string
}

// MenuList is the complete ordered menu.
type MenuList []Dish

// Clone returns a copy of l that shares no backing array with it. A nil list
// clones to an empty one.
func (l MenuList) Clone() MenuList {
	out := make(MenuList, len(l))
	copy(out, l)
	return out
}

// IndexOf returns the position of the dish with the given id, or -1.
func (l MenuList) IndexOf(id string) int {
	for i, d := range l {
		if d.ID == id {
			return i
		}
	}
	return -1
}
