package quantity

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// parentheticalRe matches: 115g (3 skivor), 10g (~3 tsk)
	parentheticalRe = regexp.MustCompile(`^(.*?\S)(\s*)\(([^()]*)\)(.*)$`)

	// rangeRe matches: 3-4 st., 2 - 3 dl
	rangeRe = regexp.MustCompile(`^(~\s*)?` + numberExpr + `\s*-\s*` + numberExpr + `(.*)$`)

	// vulgarRe matches: 1½ dl, ½ st.
	vulgarRe = regexp.MustCompile(`^(~\s*)?(?:(\d+)\s*)?([½¼¾⅓⅔])(.*)$`)

	// slashRe matches: 1/2 st.
	slashRe = regexp.MustCompile(`^(~\s*)?(\d+)\s*/\s*(\d+)(.*)$`)

	// plainRe matches: 380g, 1 msk, 2 klyftor
	plainRe = regexp.MustCompile(`^(~\s*)?` + numberExpr + `(.*)$`)
)

// inflections pairs Swedish count nouns that appear inside parentheticals.
var inflections = []struct{ singular, plural string }{
	{"skiva", "skivor"},
	{"klyfta", "klyftor"},
	{"burk", "burkar"},
	{"bit", "bitar"},
	{"kruka", "krukor"},
}

// Scale multiplies the numbers in raw by multiplier. Shapes are tried in
// order: "N unit (M subunit)", ranges "A-B", vulgar and slash fractions,
// then a plain leading number. Anything else is returned unchanged, as is
// raw itself when multiplier is 1.
func Scale(raw string, multiplier float64) string {
	if multiplier == 1 {
		return raw
	}
	if out, ok := scaleParenthetical(raw, multiplier); ok {
		return out
	}
	if out, _, ok := scaleSimple(raw, multiplier); ok {
		return out
	}
	return raw
}

func scaleParenthetical(raw string, multiplier float64) (string, bool) {
	m := parentheticalRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	head, _, ok := scaleSimple(m[1], multiplier)
	if !ok {
		return "", false
	}
	inner := m[3]
	if scaled, count, ok := scaleSimple(strings.TrimSpace(inner), multiplier); ok {
		inner = inflect(scaled, count)
	}
	return head + m[2] + "(" + inner + ")" + m[4], true
}

// scaleSimple scales a range, fraction or plain number. count is the value
// that decides singular or plural: the upper end for ranges.
func scaleSimple(s string, multiplier float64) (out string, count float64, ok bool) {
	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo := parseDecimal(m[2]) * multiplier
		hi := parseDecimal(m[3]) * multiplier
		return m[1] + FormatNumber(lo) + "-" + FormatNumber(hi) + m[4], hi, true
	}
	if m := vulgarRe.FindStringSubmatch(s); m != nil {
		v := vulgarFractions[m[3]]
		if m[2] != "" {
			whole, _ := strconv.ParseFloat(m[2], 64)
			v += whole
		}
		v *= multiplier
		return m[1] + FormatNumber(v) + m[4], v, true
	}
	if m := slashRe.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den != 0 {
			v := num / den * multiplier
			return m[1] + FormatNumber(v) + m[4], v, true
		}
	}
	if m := plainRe.FindStringSubmatch(s); m != nil {
		v := parseDecimal(m[2]) * multiplier
		return m[1] + FormatNumber(v) + m[3], v, true
	}
	return "", 0, false
}

// inflect rewrites known count nouns in s to agree with count.
func inflect(s string, count float64) string {
	one := math.Round(count*10)/10 == 1
	words := strings.Fields(s)
	changed := false
	for i, w := range words {
		bare := strings.TrimSuffix(w, ".")
		suffix := w[len(bare):]
		for _, p := range inflections {
			switch {
			case one && bare == p.plural:
				words[i] = p.singular + suffix
				changed = true
			case !one && bare == p.singular:
				words[i] = p.plural + suffix
				changed = true
			}
		}
	}
	if !changed {
		return s
	}
	return strings.Join(words, " ")
}
