// Package products resolves product codes to catalog records: name, brand,
// ingredient text, the external risk rating, and nutrition facts.
package products

import (
	"context"
	"errors"
)

// ErrNotFound distinguishes an unknown product code from a pipeline failure.
var ErrNotFound = errors.New("product not found")

// Product is one catalog record. Nutrition amounts are grams per serving; a
// negative value means the field was not supplied.
type Product struct {
	Code            string  `db:"code" json:"code"`
	Name            string  `db:"name" json:"name"`
	Brand           string  `db:"brand" json:"brand"`
	IngredientsText string  `db:"ingredients_text" json:"ingredients_text"`
	RiskRating      string  `db:"risk_rating" json:"risk_rating"`
	ServingSize     string  `db:"serving_size" json:"serving_size"`
	ProteinG        float64 `db:"protein_g" json:"protein_g"`
	FatG            float64 `db:"fat_g" json:"fat_g"`
	CarbohydratesG  float64 `db:"carbohydrates_g" json:"carbohydrates_g"`
	SaltG           float64 `db:"salt_g" json:"salt_g"`
}

// Lookup is the product resolution dependency the orchestrator and HTTP
// layer consume.
type Lookup interface {
	Get(ctx context.Context, code string) (Product, error)
}
