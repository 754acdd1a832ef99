// Package quantity parses and scales the free-form ingredient amounts used
// by recipes, e.g. "115g (3 skivor)", "1/2 st.", "10g (~3 tsk)" or "2 klyftor".
package quantity

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Quantity is the numeric part and unit of an ingredient amount.
type Quantity struct {
	Amount float64
	Unit   string
}

const numberExpr = `(\d+(?:[.,]\d+)?)`

var (
	// parseVulgarRe matches: 1½ dl, ½ st.
	parseVulgarRe = regexp.MustCompile(`^~?\s*(?:(\d+)\s*)?([½¼¾⅓⅔])\s*(\p{L}+)?`)

	// parseSlashRe matches: 1/2 st.
	parseSlashRe = regexp.MustCompile(`^~?\s*(\d+)\s*/\s*(\d+)\s*(\p{L}+)?`)

	// parseNumberRe matches: 30g, 1,5 dl, 2 klyftor, 4
	parseNumberRe = regexp.MustCompile(`^~?\s*` + numberExpr + `\s*(\p{L}+)?`)
)

var vulgarFractions = map[string]float64{
	"½": 0.5,
	"¼": 0.25,
	"¾": 0.75,
	"⅓": 1.0 / 3,
	"⅔": 2.0 / 3,
}

// Parse extracts the leading number and the unit word that follows it.
// The unit is lower-cased and a trailing period is dropped ("st." -> "st").
// Anything after the unit, including a parenthetical, is ignored. Strings
// without a leading number yield the zero Quantity.
func Parse(raw string) Quantity {
	s := strings.TrimSpace(raw)

	if m := parseVulgarRe.FindStringSubmatch(s); m != nil {
		amount := vulgarFractions[m[2]]
		if m[1] != "" {
			whole, _ := strconv.ParseFloat(m[1], 64)
			amount += whole
		}
		return Quantity{Amount: amount, Unit: normalizeUnit(m[3])}
	}
	if m := parseSlashRe.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den != 0 {
			return Quantity{Amount: num / den, Unit: normalizeUnit(m[3])}
		}
	}
	if m := parseNumberRe.FindStringSubmatch(s); m != nil {
		return Quantity{Amount: parseDecimal(m[1]), Unit: normalizeUnit(m[2])}
	}
	return Quantity{}
}

func normalizeUnit(u string) string {
	return strings.ToLower(strings.TrimSuffix(u, "."))
}

// parseDecimal converts "1,5" or "1.5" to 1.5. Comma is always a decimal
// mark, never a thousands separator. Invalid input yields 0.
func parseDecimal(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// FormatNumber rounds n to one decimal (half away from zero) and renders it
// with a comma decimal mark. Whole numbers have no decimals: 2 -> "2",
// 2.25 -> "2,3".
func FormatNumber(n float64) string {
	r := math.Round(n*10) / 10
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	return strings.Replace(strconv.FormatFloat(r, 'f', 1, 64), ".", ",", 1)
}

// FormatQuantity renders an aggregated amount, e.g. "760 g" or "2 st".
// A zero amount renders as the bare unit.
func FormatQuantity(q Quantity) string {
	if q.Amount == 0 {
		return q.Unit
	}
	if q.Unit == "" {
		return FormatNumber(q.Amount)
	}
	return FormatNumber(q.Amount) + " " + q.Unit
}
