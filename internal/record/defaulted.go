package record

// Defaulted is a bit set of fields whose source text could not be parsed and
// were replaced by a default value.
type Defaulted uint8

const (
	DefaultedYear Defaulted = 1 << iota
	DefaultedPrice
	DefaultedKilometers
	DefaultedSquareMeters
	DefaultedDate
)

var defaultedNames = []struct {
	bit  Defaulted
	name string
}{
	{DefaultedYear, "year"},
	{DefaultedPrice, "price"},
	{DefaultedKilometers, "kilometers"},
	{DefaultedSquareMeters, "square_meters"},
	{DefaultedDate, "date"},
}

// Has reports whether bit f is set.
func (d Defaulted) Has(f Defaulted) bool { return d&f != 0 }

// Fields returns the names of the set bits in a stable order.
func (d Defaulted) Fields() []string {
	var out []string
	for _, n := range defaultedNames {
		if d.Has(n.bit) {
			out = append(out, n.name)
		}
	}
	return out
}

// DefaultedFieldNames lists every field name Fields can return.
func DefaultedFieldNames() []string {
	out := make([]string, len(defaultedNames))
	for i, n := range defaultedNames {
		out[i] = n.name
	}
	return out
}
