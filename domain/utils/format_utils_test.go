package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObfuscateID(t *testing.T) {
	tests := []struct {
		id       int64
		expected string
	}{
		{123456789, "12***789"},
		{100000, "10***000"},
		{12345, "**345"},
		{1234, "*234"},
		{123, "123"},
		{7, "7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ObfuscateID(tt.id), "id %d", tt.id)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.000"},
		{100000, "100.000"},
		{1250000, "1.250.000"},
		{-5679, "-5.679"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatAmount(tt.amount), "amount %d", tt.amount)
	}
}
