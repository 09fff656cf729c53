// Package transformer projects raw export rows onto normalized car and house
// records. All tunables arrive through a Normalizer value; nothing here reads
// globals or the environment.
package transformer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"listingetl/internal/config"
	"listingetl/internal/record"
	"listingetl/internal/transformer/builtin"
)

// Canonical column names assigned positionally to each export.
var (
	CarColumns = []string{"year", "model_full", "price_raw", "km_raw"}

	HouseColumns = []string{
		"seller_type", "square_meters", "room_count", "city",
		"district", "neighborhood", "date_raw", "price",
	}
)

// Columns returns the canonical columns for dataset.
func Columns(dataset string) ([]string, error) {
	switch dataset {
	case config.DatasetCar:
		return CarColumns, nil
	case config.DatasetHouse:
		return HouseColumns, nil
	}
	return nil, fmt.Errorf("transformer: unknown dataset %q", dataset)
}

// Normalizer converts raw rows. The zero value is not useful; build one with
// NewNormalizer or fill every field.
type Normalizer struct {
	Multiplier   decimal.Decimal
	DefaultYear  int
	FallbackDate string
}

// NewNormalizer builds a Normalizer from pipeline settings.
func NewNormalizer(c config.NormalizeConfig) (Normalizer, error) {
	m, err := decimal.NewFromString(c.PriceMultiplier)
	if err != nil {
		return Normalizer{}, fmt.Errorf("price_multiplier %q: %w", c.PriceMultiplier, err)
	}
	return Normalizer{Multiplier: m, DefaultYear: c.DefaultYear, FallbackDate: c.FallbackDate}, nil
}

// Car normalizes one vehicle row.
func (n Normalizer) Car(raw record.Raw) record.Car {
	var c record.Car
	var ok bool

	if c.Year, ok = builtin.Year(raw.Get("year"), n.DefaultYear); !ok {
		c.Defaulted |= record.DefaultedYear
	}
	c.Model = builtin.Text(raw.Get("model_full"))
	if c.Price, ok = builtin.PriceScaled(raw.Get("price_raw"), n.Multiplier); !ok {
		c.Defaulted |= record.DefaultedPrice
	}
	if c.Kilometers, ok = builtin.Distance(raw.Get("km_raw")); !ok {
		c.Defaulted |= record.DefaultedKilometers
	}
	return c
}

// House normalizes one real-estate row. The price column already holds a
// plain number, so it is read with Integer rather than Price.
func (n Normalizer) House(raw record.Raw) record.House {
	h := record.House{
		SellerType:   builtin.Text(raw.Get("seller_type")),
		RoomCount:    builtin.Text(raw.Get("room_count")),
		City:         builtin.Text(raw.Get("city")),
		District:     builtin.Text(raw.Get("district")),
		Neighborhood: builtin.Text(raw.Get("neighborhood")),
	}
	var ok bool

	if h.SquareMeters, ok = builtin.Float(raw.Get("square_meters")); !ok {
		h.Defaulted |= record.DefaultedSquareMeters
	}
	if h.DatePosted, ok = builtin.Date(raw.Get("date_raw"), n.FallbackDate); !ok {
		h.Defaulted |= record.DefaultedDate
	}
	if h.Price, ok = builtin.Integer(raw.Get("price")); !ok {
		h.Defaulted |= record.DefaultedPrice
	}
	return h
}
