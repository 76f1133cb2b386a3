package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSalaryFilter(t *testing.T) {
	d := DefaultDictionary()

	tests := []struct {
		name string
		text string
		want SalaryFilter
	}{
		{"max keyword", "jobs under 500000", SalaryFilter{Kind: SalaryMax, Value: 500000}},
		{"max phrase", "Up To 80000 per month", SalaryFilter{Kind: SalaryMax, Value: 80000}},
		{"min keyword", "salary above 30000", SalaryFilter{Kind: SalaryMin, Value: 30000}},
		{"min phrase", "at least 45000", SalaryFilter{Kind: SalaryMin, Value: 45000}},
		{"range with between", "between 20000 and 50000", SalaryFilter{Kind: SalaryRange, Min: 20000, Max: 50000}},
		{"range with to", "20000 to 50000", SalaryFilter{Kind: SalaryRange, Min: 20000, Max: 50000}},
		{"range needs two numbers", "between 50000", NoSalaryFilter},
		{"numbers without keywords", "5 years of experience", NoSalaryFilter},
		{"keywords without numbers", "under budget", NoSalaryFilter},
		{"empty", "", NoSalaryFilter},
		{"overflow saturates", "under 99999999999999999999", SalaryFilter{Kind: SalaryMax, Value: math.MaxInt64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ExtractSalaryFilter(tt.text))
		})
	}
}

// The keyword precedence (max, then min, then range) misreads some phrases.
// These cases pin the current behavior; they are not a statement that it is right.
func TestExtractSalaryFilter_KnownQuirks(t *testing.T) {
	d := DefaultDictionary()

	t.Run("max beats min", func(t *testing.T) {
		got := d.ExtractSalaryFilter("minimum 30000 up to 50000")
		assert.Equal(t, SalaryFilter{Kind: SalaryMax, Value: 30000}, got)
	})

	t.Run("max beats range", func(t *testing.T) {
		got := d.ExtractSalaryFilter("max budget 20000 to 40000")
		assert.Equal(t, SalaryFilter{Kind: SalaryMax, Value: 20000}, got)
	})

	t.Run("min matches inside admin", func(t *testing.T) {
		got := d.ExtractSalaryFilter("admin role paying 40000")
		assert.Equal(t, SalaryFilter{Kind: SalaryMin, Value: 40000}, got)
	})
}

func TestSalaryFilter_Allows(t *testing.T) {
	salary := func(v int64) *int64 { return &v }

	tests := []struct {
		name   string
		filter SalaryFilter
		salary *int64
		want   bool
	}{
		{"no filter, no salary", NoSalaryFilter, nil, true},
		{"no filter, any salary", NoSalaryFilter, salary(10), true},
		{"max inclusive", SalaryFilter{Kind: SalaryMax, Value: 500}, salary(500), true},
		{"max exceeded", SalaryFilter{Kind: SalaryMax, Value: 500}, salary(501), false},
		{"min inclusive", SalaryFilter{Kind: SalaryMin, Value: 500}, salary(500), true},
		{"min not reached", SalaryFilter{Kind: SalaryMin, Value: 500}, salary(499), false},
		{"range low bound", SalaryFilter{Kind: SalaryRange, Min: 100, Max: 200}, salary(100), true},
		{"range high bound", SalaryFilter{Kind: SalaryRange, Min: 100, Max: 200}, salary(200), true},
		{"range outside", SalaryFilter{Kind: SalaryRange, Min: 100, Max: 200}, salary(201), false},
		{"missing salary", SalaryFilter{Kind: SalaryMax, Value: 500}, nil, false},
		{"zero salary counts as missing", SalaryFilter{Kind: SalaryMax, Value: 500}, salary(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Allows(tt.salary))
		})
	}
}

func TestSalaryFilter_String(t *testing.T) {
	assert.Equal(t, "none", NoSalaryFilter.String())
	assert.Equal(t, "max(500)", SalaryFilter{Kind: SalaryMax, Value: 500}.String())
	assert.Equal(t, "range(1,2)", SalaryFilter{Kind: SalaryRange, Min: 1, Max: 2}.String())
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "₹950", FormatRupees(950))
	assert.Equal(t, "₹50,000", FormatRupees(50000))
	assert.Equal(t, "₹15,00,000", FormatRupees(1500000))
}
