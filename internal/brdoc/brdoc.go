// Package brdoc validates and formats Brazilian registry numbers:
// CPF (individuals), CNPJ (companies) and CEP (postal codes).
package brdoc

import "strings"

// OnlyDigits strips every non digit rune from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

// checkDigit computes a mod 11 verifier digit using weights w over digits d.
func checkDigit(d string, w []int) byte {
	sum := 0
	for i, wt := range w {
		sum += int(d[i]-'0') * wt
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

var (
	cpfWeights1  = []int{10, 9, 8, 7, 6, 5, 4, 3, 2}
	cpfWeights2  = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// IsCPF reports whether s, punctuation ignored, is a valid CPF.
func IsCPF(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	return checkDigit(d, cpfWeights1) == d[9] && checkDigit(d, cpfWeights2) == d[10]
}

// IsCNPJ reports whether s, punctuation ignored, is a valid CNPJ.
func IsCNPJ(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	return checkDigit(d, cnpjWeights1) == d[12] && checkDigit(d, cnpjWeights2) == d[13]
}

// IsTaxID accepts either a CPF or a CNPJ.
func IsTaxID(s string) bool {
	switch len(OnlyDigits(s)) {
	case 11:
		return IsCPF(s)
	case 14:
		return IsCNPJ(s)
	default:
		return false
	}
}

// FormatTaxID renders 000.000.000-00 or 00.000.000/0000-00. Invalid lengths are returned as digits.
func FormatTaxID(s string) string {
	d := OnlyDigits(s)
	switch len(d) {
	case 11:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
	case 14:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
	default:
		return d
	}
}

// NormalizeCEP returns the 8 digits of a postal code, or false when the format is invalid.
// Only digits with an optional hyphen after the fifth digit are accepted.
func NormalizeCEP(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 9 && s[5] == '-' {
		s = s[:5] + s[6:]
	}
	if len(s) != 8 || OnlyDigits(s) != s {
		return "", false
	}
	return s, true
}

// FormatCEP renders 00000-000.
func FormatCEP(cep string) string {
	if len(cep) != 8 {
		return cep
	}
	return cep[:5] + "-" + cep[5:]
}
