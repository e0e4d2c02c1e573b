package eligibility

import "strings"

// cpfLength is the number of digits in a well-formed CPF.
const cpfLength = 11

// NormalizeCPF strips everything but digits from a raw CPF value.
// Idempotent: normalizing an already-normalized CPF is a no-op.
func NormalizeCPF(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether the raw value normalizes to exactly 11 digits.
// No check-digit verification is performed; the regulation gate only
// requires a structurally complete CPF.
func ValidCPF(raw string) bool {
	return len(NormalizeCPF(raw)) == cpfLength
}

// MaskCPF renders a normalized 11-digit CPF with only digits 4-6 visible,
// e.g. "12345678901" -> "***.456.***-**". Values that are not 11 digits
// are fully redacted.
func MaskCPF(normalized string) string {
	if len(normalized) != cpfLength {
		return "***"
	}
	return "***." + normalized[3:6] + ".***-**"
}
