package builtin

import "testing"

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"173.000 ", 173000, true},
		{"173.000 km", 173000, true},
		{"98,500", 98500, true},
		{"0", 0, true},
		{"", 0, false},
		{"km", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tt := range tests {
		got, ok := Distance(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Distance(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"2015", 2015, true},
		{"2015.0", 2000, false},
		{" 2015", 2000, false},
		{"", 2000, false},
		{"bilinmiyor", 2000, false},
	}
	for _, tt := range tests {
		got, ok := Year(tt.in, 2000)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Year(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"1500000", 1500000, true},
		{"1500000.0", 1500000, true},
		{"1500000.99", 1500000, true},
		{" 42 ", 42, true},
		{"-5", 0, false},
		{"", 0, false},
		{"1.500.000", 0, false},
		{"9223372036854775807", 9223372036854775807, true},
		{"9223372036854775808", 0, false},
		{"1e30", 0, false},
		{"-0.5", 0, false},
	}
	for _, tt := range tests {
		got, ok := Integer(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Integer(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"120", 120, true},
		{"85.5", 85.5, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"-1", 0, false},
		{"yüz", 0, false},
	}
	for _, tt := range tests {
		got, ok := Float(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Float(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
