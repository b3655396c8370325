package utils

// Clip shortens s to at most max runes, replacing the tail with marker
// when anything was cut. The marker counts toward max when it fits.
func Clip(s string, max int, marker string) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	m := []rune(marker)
	if len(m) >= max {
		return string(runes[:max])
	}
	return string(runes[:max-len(m)]) + marker
}
