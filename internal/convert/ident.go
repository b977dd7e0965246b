package convert

import (
	"strconv"
	"strings"
	"unicode"
)

// words splits s at non-alphanumerics and lower-to-upper case changes.
func words(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

// camel converts s to an exported CamelCase identifier.
func camel(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		rs := []rune(w)
		b.WriteRune(unicode.ToUpper(rs[0]))
		b.WriteString(string(rs[1:]))
	}
	id := b.String()
	if id != "" && unicode.IsDigit([]rune(id)[0]) {
		id = "X" + id
	}
	return id
}

// upperSnake converts a CamelCase identifier to UPPER_SNAKE_CASE.
func upperSnake(id string) string {
	ws := words(id)
	for i, w := range ws {
		ws[i] = strings.ToUpper(w)
	}
	return strings.Join(ws, "_")
}

// uniqueIdents maps each label to a distinct CamelCase identifier.
func uniqueIdents(labels []string) map[string]string {
	idents := make(map[string]string, len(labels))
	used := make(map[string]bool, len(labels))
	for _, l := range labels {
		if _, ok := idents[l]; ok {
			continue
		}
		base := camel(l)
		if base == "" {
			base = "X"
		}
		id := base
		for n := 2; used[id]; n++ {
			id = base + strconv.Itoa(n)
		}
		used[id] = true
		idents[l] = id
	}
	return idents
}
