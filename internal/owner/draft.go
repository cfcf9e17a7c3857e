package owner

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vbonduro/menuboard/internal/domain"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("invalid dish")

// ValidationError reports the first draft field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Draft holds the owner form fields as typed. An empty Category means the
// default, Starter.
type Draft struct {
	Name        string
	Description string
	Price       string
	Category    domain.Category
	Image       string
}

func blankDraft() Draft {
	return Draft{Category: domain.CategoryStarter}
}

// Validate checks the draft and returns the normalized dish it describes,
// without an ID. Text fields are trimmed and the price is formatted with two
// decimals. The image reference is passed through untouched.
func (d Draft) Validate() (domain.Dish, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return domain.Dish{}, &ValidationError{Field: "name", Reason: "required"}
	}
	description := strings.TrimSpace(d.Description)
	if description == "" {
		return domain.Dish{}, &ValidationError{Field: "description", Reason: "required"}
	}
	priceText := strings.TrimSpace(d.Price)
	if priceText == "" {
		return domain.Dish{}, &ValidationError{Field: "price", Reason: "required"}
	}

	price, err := normalizePrice(priceText)
	if err != nil {
		return domain.Dish{}, err
	}

	category := d.Category
	if category == "" {
		category = domain.CategoryStarter
	}
	if _, err := domain.ParseCategory(string(category)); err != nil {
		return domain.Dish{}, &ValidationError{Field: "category", Reason: err.Error()}
	}

	return domain.Dish{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Image:       d.Image,
	}, nil
}

// normalizePrice parses s and formats it with two decimals. Amounts that
// round to 0.00 are rejected along with zero and negatives.
func normalizePrice(s string) (string, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &ValidationError{Field: "price", Reason: "must be a number"}
	}
	formatted := strconv.FormatFloat(f, 'f', 2, 64)
	if f <= 0 || formatted == "0.00" {
		return "", &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	return formatted, nil
}
