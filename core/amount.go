package core

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// AssetDecimals is the precision both supported ledgers use: 1 major
// unit = 10^8 minor units (e8s for ICP, sats for ckBTC).
const AssetDecimals = 8

// displayDecimals is how many fractional digits balances render with.
const displayDecimals = 4

// FormatAmount renders a balance in minor units as a major-unit string,
// e.g. 250_000_000 -> "2.5000".
func FormatAmount(minor uint64) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(minor), -AssetDecimals)
	return d.StringFixed(displayDecimals)
}

// ToMinorUnits converts a major-unit decimal string to minor units,
// truncating anything below the ledger's precision.
func ToMinorUnits(major string) (uint64, error) {
	d, err := decimal.NewFromString(major)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", major, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: negative", major)
	}
	minor := d.Shift(AssetDecimals).Truncate(0)
	if !minor.BigInt().IsUint64() {
		return 0, fmt.Errorf("invalid amount %q: out of range", major)
	}
	return minor.BigInt().Uint64(), nil
}
