package common

import (
	"math/big"
	"strings"
)

// HexToDec converts a 0x-prefixed hex quantity to a decimal string. Empty,
// absent and malformed inputs all yield "0" because a missing quantity must
// never abort normalization of the surrounding record.
func HexToDec(hex string) string {
	hex = strings.TrimSpace(hex)
	if hex == "" || hex == "0x" {
		return "0"
	}
	neg := strings.HasPrefix(hex, "-")
	hex = strings.TrimPrefix(hex, "-")
	if !strings.HasPrefix(hex, "0x") && !strings.HasPrefix(hex, "0X") {
		return "0"
	}
	result, ok := big.NewInt(0).SetString(hex[2:], 16)
	if !ok {
		return "0"
	}
	if neg {
		result.Neg(result)
	}
	return result.String()
}

// parseBaseUnits reads a raw base-unit amount given either as a 0x-hex
// quantity or a decimal string. Only the integer portion of a decimal input
// is kept, a defensive truncation against already-malformed inputs.
func parseBaseUnits(raw string) (*big.Int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return big.NewInt(0), true
	}
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	var result *big.Int
	var ok bool
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		result, ok = big.NewInt(0).SetString(raw[2:], 16)
	} else {
		if dot := strings.IndexByte(raw, '.'); dot >= 0 {
			raw = raw[:dot]
		}
		if raw == "" {
			raw = "0"
		}
		result, ok = big.NewInt(0).SetString(raw, 10)
	}
	if !ok {
		return nil, false
	}
	if neg {
		result.Neg(result)
	}
	return result, true
}

// ToDecimalString renders a raw base-unit amount (decimal or hex string) as
// a human decimal string with the given number of decimal places. The whole
// conversion happens on arbitrary-precision integers and plain string
// manipulation so amounts up to 2^256 and beyond stay exact.
//
// Example:
//   - ToDecimalString("1500000000000000000", 18) = "1.5"
//   - ToDecimalString("0xde0b6b3a7640000", 18) = "1"
//
// Malformed input fails soft and returns "0": every displayed monetary
// figure routes through here and a single bad upstream field must not take
// a whole result down.
func ToDecimalString(raw string, decimals int) string {
	if decimals < 0 {
		return "0"
	}
	value, ok := parseBaseUnits(raw)
	if !ok || value.Sign() == 0 {
		return "0"
	}

	neg := value.Sign() < 0
	digits := big.NewInt(0).Abs(value).String()

	// Left-pad until the string is longer than the fractional width, then
	// split at the decimal boundary.
	for len(digits) <= decimals {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-decimals]
	fracPart := strings.TrimRight(digits[len(digits)-decimals:], "0")

	result := intPart
	if fracPart != "" {
		result = intPart + "." + fracPart
	}
	if neg {
		result = "-" + result
	}
	return result
}

// ToBaseUnits is the inverse of ToDecimalString: it re-scales a human
// decimal string back to an integer base-unit string.
func ToBaseUnits(value string, decimals int) string {
	value = strings.TrimSpace(value)
	if value == "" || decimals < 0 {
		return "0"
	}
	neg := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")

	intPart := value
	fracPart := ""
	if dot := strings.IndexByte(value, '.'); dot >= 0 {
		intPart, fracPart = value[:dot], value[dot+1:]
	}
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	for len(fracPart) < decimals {
		fracPart += "0"
	}
	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		return "0"
	}
	if _, ok := big.NewInt(0).SetString(digits, 10); !ok {
		return "0"
	}
	if neg {
		digits = "-" + digits
	}
	return digits
}

// StringToBig parses a decimal string into a big int, returning zero on
// failure.
func StringToBig(input string) *big.Int {
	result, ok := big.NewInt(0).SetString(input, 10)
	if !ok {
		return big.NewInt(0)
	}
	return result
}
