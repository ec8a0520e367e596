package brdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCPF(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"529.982.247-25", true},
		{"52998224725", true},
		{"529.982.247-24", false},
		{"111.111.111-11", false},
		{"1234567890", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCPF(tt.in))
		})
	}
}

func TestIsCNPJ(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"11.222.333/0001-81", true},
		{"11222333000181", true},
		{"11.222.333/0001-80", false},
		{"00.000.000/0000-00", false},
		{"1122233300018", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCNPJ(tt.in))
		})
	}
}

func TestIsTaxID(t *testing.T) {
	assert.True(t, IsTaxID("529.982.247-25"))
	assert.True(t, IsTaxID("11.222.333/0001-81"))
	assert.False(t, IsTaxID("123"))
	assert.False(t, IsTaxID("11.222.333/0001-82"))
}

func TestFormatTaxID(t *testing.T) {
	assert.Equal(t, "529.982.247-25", FormatTaxID("52998224725"))
	assert.Equal(t, "11.222.333/0001-81", FormatTaxID("11222333000181"))
	assert.Equal(t, "123", FormatTaxID("1-2-3"))
}

func TestNormalizeCEP(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"01001000", "01001000", true},
		{"01001-000", "01001000", true},
		{" 01001-000 ", "01001000", true},
		{"0100-1000", "", false},
		{"0100100", "", false},
		{"0100100a", "", false},
		{"010010000", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeCEP(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "01001-000", FormatCEP("01001000"))
}
