package cases

import "strings"

const maxNumberDigits = 20

// FormatNumber deja solo dígitos (máx 20) y aplica la máscara CNJ
// NNNNNNN-DD.AAAA.J.TR.OOOO cuando hay más de 16.
func FormatNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == maxNumberDigits {
				break
			}
		}
	}
	v := b.String()
	if len(v) <= 16 {
		return v
	}
	return v[:7] + "-" + v[7:9] + "." + v[9:13] + "." + v[13:14] + "." + v[14:16] + "." + v[16:]
}
