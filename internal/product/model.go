package product

import (
	"time"
)

type Category string

const (
	CategorySweets  Category = "sweets"
	CategorySnacks  Category = "snacks"
	CategoryPickles Category = "pickles"
)

// Categories lists every category in display order.
var Categories = []Category{CategorySweets, CategorySnacks, CategoryPickles}

var categoryLabels = map[Category]Localized{
	CategorySweets:  {En: "Sweets", Hi: "मिठाइयाँ"},
	CategorySnacks:  {En: "Snacks", Hi: "नमकीन"},
	CategoryPickles: {En: "Pickles", Hi: "अचार"},
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Localized carries an English value and an optional Hindi one.
type Localized struct {
	En string `json:"en" yaml:"en"`
	Hi string `json:"hi,omitempty" yaml:"hi,omitempty"`
}

type Variant struct {
	Weight string  `json:"weight" yaml:"weight"`
	Price  float64 `json:"price" yaml:"price"`
}

type Product struct {
	ID          string    `json:"_id" yaml:"id"`
	Name        Localized `json:"name" yaml:"name"`
	Description Localized `json:"description" yaml:"description"`
	Category    Category  `json:"category" yaml:"category"`
	BasePrice   float64   `json:"basePrice" yaml:"basePrice"`
	Variants    []Variant `json:"variants" yaml:"variants"`
	Images      []string  `json:"images" yaml:"images"`
	Ingredients []string  `json:"ingredients,omitempty" yaml:"ingredients"`
	Benefits    []string  `json:"benefits,omitempty" yaml:"benefits"`
	Storage     string    `json:"storage,omitempty" yaml:"storage"`
	ShelfLife   string    `json:"shelfLife,omitempty" yaml:"shelfLife"`
	Available   bool      `json:"available" yaml:"available"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"-"`
}

type CategorySummary struct {
	Category Category  `json:"category"`
	Label    Localized `json:"label"`
	Count    int       `json:"count"`
}

type ListFilter struct {
	Category Category
	// IncludeUnavailable is set for admin listings.
	IncludeUnavailable bool
}
