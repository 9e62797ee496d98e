package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriorityKey is an ordered tuple compared component by component.
// A higher key is allocated first; missing trailing components count as zero.
type PriorityKey []decimal.Decimal

// Compare returns -1, 0 or 1 as k is lower than, equal to or higher than other
func (k PriorityKey) Compare(other PriorityKey) int {
	n := len(k)
	if len(other) > n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		a, b := decimal.Zero, decimal.Zero
		if i < len(k) {
			a = k[i]
		}
		if i < len(other) {
			b = other[i]
		}
		if c := a.Cmp(b); c != 0 {
			return c
		}
	}
	return 0
}

// String renders the key as a slash separated tuple
func (k PriorityKey) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = v.String()
	}
	return strings.Join(parts, "/")
}

// LevelRank converts a storage level letter into a rank where level A is the highest.
// Anything that is not a single letter ranks below Z.
func LevelRank(level string) decimal.Decimal {
	level = strings.ToUpper(strings.TrimSpace(level))
	if len(level) == 0 {
		return decimal.Zero
	}
	c := level[len(level)-1]
	if c < 'A' || c > 'Z' {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64('Z'-c) + 1)
}
