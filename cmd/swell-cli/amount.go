package main

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const etherDecimals = 18

// parseAmount converts a user amount into a decimal base-unit string.
// Plain integers are base units; a trailing "eth" or "ether" scales a
// decimal value by 10^18.
func parseAmount(s string) (string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "", fmt.Errorf("amount is required")
	}
	for _, suffix := range []string{"ether", "eth"} {
		if strings.HasSuffix(s, suffix) {
			return scaleDecimal(strings.TrimSpace(strings.TrimSuffix(s, suffix)), etherDecimals)
		}
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v.Dec(), nil
}

// scaleDecimal multiplies a non-negative decimal string by 10^decimals.
func scaleDecimal(s string, decimals int) (string, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return "", fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return "", fmt.Errorf("invalid amount %q: more than %d decimal places", s, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))
	v, err := uint256.FromDecimal(strings.TrimLeft(whole+frac, "0") + "0")
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", s, err)
	}
	// The appended zero keeps an all-zero input parseable.
	v.Div(v, uint256.NewInt(10))
	return v.Dec(), nil
}

// formatUnits renders a decimal base-unit string with the given number of
// decimals, trimming trailing zeros.
func formatUnits(dec string, decimals int) string {
	if decimals <= 0 {
		return dec
	}
	if len(dec) <= decimals {
		dec = strings.Repeat("0", decimals-len(dec)+1) + dec
	}
	whole, frac := dec[:len(dec)-decimals], strings.TrimRight(dec[len(dec)-decimals:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func formatEther(dec string) string {
	return formatUnits(dec, etherDecimals)
}
