package utils

import (
	"github.com/shopspring/decimal"
)

func UniqueSlice[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	result := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

func DereferencePtr[T any](ptr *T) T {
	var zero T
	if ptr == nil {
		return zero
	}
	return *ptr
}

// Quantize2 rounds to two fractional digits. All monetary comparisons in
// this codebase go through quantized values.
func Quantize2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

var Hundred = decimal.NewFromInt(100)
