// Package record holds the row shapes that flow through the listing ETL:
// raw rows as read from an export and the normalized car and house rows that
// are rendered into SQL.
package record

import "strings"

// Raw is one source row. Columns is shared with every other row of the same
// table and must not be modified.
type Raw struct {
	// Line is the 1-based data row number (header excluded).
	Line    int
	Columns []string
	Values  []string
}

// Get returns the value for column name, or "" if the row has no such column.
func (r Raw) Get(name string) string {
	for i, c := range r.Columns {
		if c == name {
			if i < len(r.Values) {
				return r.Values[i]
			}
			return ""
		}
	}
	return ""
}

// Present reports whether every named column exists and is non-blank.
func (r Raw) Present(names ...string) bool {
	for _, n := range names {
		if strings.TrimSpace(r.Get(n)) == "" {
			return false
		}
	}
	return true
}

// Car is a normalized vehicle listing.
type Car struct {
	Year       int
	Model      string
	Price      int64
	Kilometers int64
	Defaulted  Defaulted
}

// Values returns the row in car table column order.
func (c Car) Values() []any {
	return []any{c.Year, c.Model, c.Price, c.Kilometers}
}

// House is a normalized real-estate listing.
type House struct {
	SellerType   string
	SquareMeters float64
	RoomCount    string
	City         string
	District     string
	Neighborhood string
	// DatePosted is YYYY-MM-DD.
	DatePosted string
	Price      int64
	Defaulted  Defaulted
}

// Values returns the row in house table column order.
func (h House) Values() []any {
	return []any{
		h.SellerType, h.SquareMeters, h.RoomCount, h.City,
		h.District, h.Neighborhood, h.DatePosted, h.Price,
	}
}
