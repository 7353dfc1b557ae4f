package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// Prices holds one independent amount per currency. The amounts are decimal
// strings and are never converted into one another.
type Prices struct {
	NGN string `json:"NGN,omitempty" bson:"NGN"`
	USD string `json:"USD,omitempty" bson:"USD"`
	GBP string `json:"GBP,omitempty" bson:"GBP"`
}

// USDAmount parses the USD price. ok is false when it is empty or malformed.
func (p Prices) USDAmount() (amount decimal.Decimal, ok bool) {
	s := strings.TrimSpace(p.USD)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// IsZero reports whether no currency carries a positive amount.
func (p Prices) IsZero() bool {
	for _, s := range []string{p.NGN, p.USD, p.GBP} {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err == nil && d.IsPositive() {
			return false
		}
	}
	return true
}

// Product representa un producto en el catálogo
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Images      []string           `json:"images" bson:"images"`
	Price       Prices             `json:"price" bson:"price"`
	Stock       *int               `json:"stock" bson:"stock"`
	Brand       string             `json:"brand,omitempty" bson:"brand,omitempty"`
	Gender      Gender             `json:"gender,omitempty" bson:"gender,omitempty"`
	Sizes       []string           `json:"sizes" bson:"sizes"`
	Colors      []string           `json:"colors" bson:"colors"`
	Category    CategoryRef        `json:"category" bson:"category,omitempty"`
	Published   bool               `json:"published" bson:"published"`
	IsAvailable bool               `json:"is_available" bson:"is_available"`
	Rating      float64            `json:"rating" bson:"rating"`
	ReviewCount int                `json:"review_count" bson:"review_count"`
	IsDeleted   bool               `json:"-" bson:"is_deleted"`
	DeletedAt   *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// OptionalInt distinguishes an absent field from an explicit null. Set is true
// whenever the key was present; Value is nil for null.
type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// ProductUpdate representa los campos actualizables de un producto
type ProductUpdate struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Images      []string    `json:"images,omitempty"`
	Price       *Prices     `json:"price,omitempty"`
	Stock       OptionalInt `json:"stock"`
	Brand       *string     `json:"brand,omitempty"`
	Gender      *Gender     `json:"gender,omitempty"`
	Sizes       []string    `json:"sizes,omitempty"`
	Colors      []string    `json:"colors,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Published   *bool       `json:"published,omitempty"`
	IsAvailable *bool       `json:"is_available,omitempty"`
}

// NewProduct carries the admin "add" form. Category is an id or a name.
type NewProduct struct {
	Name        string
	Description string
	Price       Prices
	Stock       *int
	Brand       string
	Gender      Gender
	Sizes       []string
	Colors      []string
	Category    string
	Published   bool
	IsAvailable *bool
}

// Sort keys accepted by product listings.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortName      = "name"
)

// ProductFilter selects products for a listing. Category may be an id or a
// human-readable name. A nil Published includes drafts.
type ProductFilter struct {
	Category  string
	Gender    string
	Size      string
	Color     string
	Query     string
	Published *bool
	Sort      string
	Page      int
	PageSize  int
}

type ProductPage struct {
	Products []*Product `json:"products"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	Pages    int        `json:"pages"`
}
