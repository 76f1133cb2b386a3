package matching

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SalaryKind discriminates the SalaryFilter variants.
type SalaryKind int

const (
	SalaryNone SalaryKind = iota
	SalaryMax
	SalaryMin
	SalaryRange
)

func (k SalaryKind) String() string {
	switch k {
	case SalaryMax:
		return "max"
	case SalaryMin:
		return "min"
	case SalaryRange:
		return "range"
	default:
		return "none"
	}
}

// SalaryFilter is a numeric salary constraint parsed from free text.
// Value is set for Max and Min; Min and Max bound a Range (inclusive).
type SalaryFilter struct {
	Kind  SalaryKind
	Value int64
	Min   int64
	Max   int64
}

// NoSalaryFilter applies no salary constraint.
var NoSalaryFilter = SalaryFilter{Kind: SalaryNone}

// IsSet reports whether the filter constrains salaries.
func (f SalaryFilter) IsSet() bool {
	return f.Kind != SalaryNone
}

// Allows reports whether a posting salary passes the filter.
// A missing or zero salary never passes a set filter.
func (f SalaryFilter) Allows(salary *int64) bool {
	if !f.IsSet() {
		return true
	}
	if salary == nil || *salary == 0 {
		return false
	}
	s := *salary
	switch f.Kind {
	case SalaryMax:
		return s <= f.Value
	case SalaryMin:
		return s >= f.Value
	case SalaryRange:
		return s >= f.Min && s <= f.Max
	}
	return false
}

func (f SalaryFilter) String() string {
	switch f.Kind {
	case SalaryMax, SalaryMin:
		return fmt.Sprintf("%s(%d)", f.Kind, f.Value)
	case SalaryRange:
		return fmt.Sprintf("range(%d,%d)", f.Min, f.Max)
	default:
		return "none"
	}
}

var digitRuns = regexp.MustCompile(`[0-9]+`)

// ExtractSalaryFilter parses a salary constraint out of free text.
// Keyword precedence is max, then min, then range; a range needs a marker and two numbers.
// The first number in the text is the bound, whichever keyword triggered.
// Text without digits, or without a recognised keyword, yields NoSalaryFilter.
func (d *Dictionary) ExtractSalaryFilter(text string) SalaryFilter {
	lower := strings.ToLower(text)
	numbers := extractNumbers(lower)
	if len(numbers) == 0 {
		return NoSalaryFilter
	}

	first := numbers[0]
	switch {
	case containsAny(lower, d.Salary.Max):
		return SalaryFilter{Kind: SalaryMax, Value: first}
	case containsAny(lower, d.Salary.Min):
		return SalaryFilter{Kind: SalaryMin, Value: first}
	case containsAny(lower, d.Salary.RangeMarkers) && len(numbers) >= 2:
		return SalaryFilter{Kind: SalaryRange, Min: first, Max: numbers[1]}
	}
	return NoSalaryFilter
}

func extractNumbers(text string) []int64 {
	runs := digitRuns.FindAllString(text, -1)
	numbers := make([]int64, 0, len(runs))
	for _, r := range runs {
		n, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			// Only overflow can fail here; saturate instead of dropping the number.
			n = math.MaxInt64
		}
		numbers = append(numbers, n)
	}
	return numbers
}

var indianEnglish = language.MustParse("en-IN")

// FormatRupees renders an amount with the rupee sign and Indian digit grouping.
func FormatRupees(amount int64) string {
	return "₹" + message.NewPrinter(indianEnglish).Sprintf("%d", amount)
}
