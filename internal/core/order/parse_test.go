package order

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"แฮมชีส 2", "แฮมชีส 2"},
		{"แชนวิชแฮม", "แซนวิชแฮม"},
		{"ซฮย 5", "ซอย 5"},
		{"ไม่เอาแครอช แครอช", "ไม่เอาแครอท แครอท"},
		{"ไม่ผักกาด", "ไม่ผัก"},
		{"ผักกาดกาด", "ผัก"},
	}

	for _, tt := range tests {
		got := e.Normalize(tt.in)
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := e.Normalize(got); again != got {
			t.Errorf("Normalize is not idempotent for %q: %q -> %q", tt.in, got, again)
		}
	}
}

func TestExtractFields_Time(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		in   string
		want string
	}{
		{"ส่ง 7.30 นะคะ", "7.30"},
		{"12:00 แล้วก็ 13:00", "12:00"},
		{"25:99", "25:99"},
		{"แฮมชีส 2", ""},
		{"บ้าน 171 ซ.19", ""},
	}

	for _, tt := range tests {
		if got := e.ExtractFields(tt.in).DeliveryTime; got != tt.want {
			t.Errorf("time of %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractFields_Address(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		in   string
		want *Address
		text string
	}{
		{"house then lane", "บ้าน 12 ซอย 3", &Address{House: "12", Lane: "3", Rule: "house-lane"}, "12 ซ.3"},
		{"lane then house", "ซอย 3 บ้าน 12/4", &Address{House: "12/4", Lane: "3", Rule: "lane-house"}, "12/4 ซ.3"},
		{"number then lane", "ส่งที่ 171 ซ.19 ค่ะ", &Address{House: "171", Lane: "19", Rule: "number-lane"}, "171 ซ.19"},
		{"house only", "บ้าน 88", &Address{House: "88", Rule: "house"}, "88"},
		{"lane only", "ซ.7", &Address{Lane: "7", Rule: "lane"}, "ซ.7"},
		{"misspelled lane", "ซฮย 5", &Address{Lane: "5", Rule: "lane"}, "ซ.5"},
		{"does not cross lines", "แฮมชีส 2\nซ.5", &Address{Lane: "5", Rule: "lane"}, "ซ.5"},
		{"none", "แฮมชีส 2", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ExtractFields(e.Normalize(tt.in)).DeliveryAddress
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
			if got.String() != tt.text {
				t.Errorf("expected %q, got %q", tt.text, got.String())
			}
		})
	}
}

func TestExtractFields_MisspelledLaneMatchesCanonical(t *testing.T) {
	e := newTestEngine(t)

	a := e.BuildOrder("ซฮย 5").DeliveryAddress
	b := e.BuildOrder("ซอย 5").DeliveryAddress
	if a == nil || b == nil || a.Lane != b.Lane {
		t.Errorf("expected same lane, got %+v and %+v", a, b)
	}
}

func TestSegment(t *testing.T) {
	got := Segment("  แฮมชีส 2 \r\n\n   \nทูน่า\n")
	want := []string{"แฮมชีส 2", "ทูน่า"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
	if Segment("") != nil {
		t.Error("expected nil for empty input")
	}
}

func TestParseLine(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		line string
		ok   bool
		want RawLineItem
	}{
		{
			name: "catalog order not text order",
			line: "ชีสแฮม 2",
			ok:   true,
			want: RawLineItem{Ingredients: []string{"แฮม", "ชีส"}, Quantity: 2},
		},
		{
			name: "duplicate mention counted once",
			line: "แฮมแฮมชีส",
			ok:   true,
			want: RawLineItem{Ingredients: []string{"แฮม", "ชีส"}, Quantity: 1},
		},
		{
			name: "last exclusion wins",
			line: "แฮมชีส ไม่ซอสมะเขือเทศ",
			ok:   true,
			want: RawLineItem{
				Ingredients: []string{"แฮม", "ชีส"},
				Quantity:    1,
				Modifier:    &Modifier{Kind: ModifierExclusion, Phrase: "ไม่ซอสมะเขือเทศ"},
			},
		},
		{
			name: "inclusion overrides exclusion",
			line: "แฮมชีส ไม่แครอท เอาแค่แครอท",
			ok:   true,
			want: RawLineItem{
				Ingredients: []string{"แฮม", "ชีส"},
				Quantity:    1,
				Modifier:    &Modifier{Kind: ModifierInclusion, Phrase: "เอาแค่แครอท"},
			},
		},
		{
			name: "zero quantity clamps to one",
			line: "แฮมชีส 0",
			ok:   true,
			want: RawLineItem{Ingredients: []string{"แฮม", "ชีส"}, Quantity: 1},
		},
		{
			name: "large quantity clamps to max",
			line: "แฮมชีส 1000",
			ok:   true,
			want: RawLineItem{Ingredients: []string{"แฮม", "ชีส"}, Quantity: 99},
		},
		{
			name: "overflowing quantity clamps to max",
			line: "แฮมชีส 99999999999999999999999",
			ok:   true,
			want: RawLineItem{Ingredients: []string{"แฮม", "ชีส"}, Quantity: 99},
		},
		{
			name: "no ingredient",
			line: "ขอบคุณค่ะ 2",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ParseLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPriceTable(t *testing.T) {
	prices := DefaultMenu().Prices
	want := map[int]int{0: 0, 1: 0, 2: 39, 3: 45, 4: 55, 5: 55, 8: 55}

	for count, unit := range want {
		if got := prices.UnitPrice(count); got != unit {
			t.Errorf("UnitPrice(%d) = %d, want %d", count, got, unit)
		}
		for _, qty := range []int{1, 2, 7} {
			if got := prices.LineTotal(count, qty); got != unit*qty {
				t.Errorf("LineTotal(%d, %d) = %d, want %d", count, qty, got, unit*qty)
			}
		}
	}

	if got := (PriceTable{}).UnitPrice(3); got != 0 {
		t.Errorf("empty table should price 0, got %d", got)
	}
}
