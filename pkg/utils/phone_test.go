package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhoneFR(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{name: "national with spaces", in: "06 76 73 86 61", want: "+33676738661", wantOK: true},
		{name: "national with dots", in: "06.76.73.86.61", want: "+33676738661", wantOK: true},
		{name: "national compact", in: "0676738661", want: "+33676738661", wantOK: true},
		{name: "bare nine digits", in: "676738661", want: "+33676738661", wantOK: true},
		{name: "plus country code", in: "+33 6 76 73 86 61", want: "+33676738661", wantOK: true},
		{name: "plus country code with trunk zero", in: "+33 (0)6 76 73 86 61", want: "+33676738661", wantOK: true},
		{name: "double zero prefix", in: "0033 6 76 73 86 61", want: "+33676738661", wantOK: true},
		{name: "country code without plus", in: "33 6 76 73 86 61", want: "+33676738661", wantOK: true},
		{name: "surrounding whitespace", in: "  01 23 45 67 89 ", want: "+33123456789", wantOK: true},
		{name: "too short", in: "12345", wantOK: false},
		{name: "eleven national digits", in: "06767386612", wantOK: false},
		{name: "ten digits without trunk zero", in: "1676738661", wantOK: false},
		{name: "foreign country code", in: "+44 7700 900123", wantOK: false},
		{name: "country code too short", in: "+33 6 76 73", wantOK: false},
		{name: "country code too long", in: "+33 6 76 73 86 61 1", wantOK: false},
		{name: "zero after country code leaves eight digits", in: "+33012345678", wantOK: false},
		{name: "zeros after country code", in: "+330000000000", wantOK: false},
		{name: "country code then zeros and one digit", in: "+33000000001", wantOK: false},
		{name: "double zero then country code and trunk zeros", in: "003300676738661", want: "+33676738661", wantOK: true},
		{name: "letters only", in: "call me", wantOK: false},
		{name: "empty", in: "", wantOK: false},
		{name: "blank", in: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhoneFR(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhoneFR_NationalFormMapsToCountryForm(t *testing.T) {
	for _, tail := range []string{"123456789", "676738661", "999999999", "100000000", "712345678"} {
		got, ok := NormalizePhoneFR("0" + tail)
		assert.True(t, ok, tail)
		assert.Equal(t, "+33"+tail, got)
	}
}

func TestNormalizePhoneFR_Idempotent(t *testing.T) {
	inputs := []string{"+33676738661", "+33123456789", "+33900000000"}
	for i := 0; i < 50; i++ {
		inputs = append(inputs, fmt.Sprintf("+33%d%08d", 1+i%9, i*1999999))
	}

	for _, in := range inputs {
		first, ok := NormalizePhoneFR(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, in, first)
			second, ok := NormalizePhoneFR(first)
			assert.True(t, ok)
			assert.Equal(t, first, second)
		}
	}
}
