package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Performance compares a dca plus vault against its standard baseline.
// Comparable is false when the baseline has received nothing, in which case
// Factor is zero and no fee is charged.
type Performance struct {
	Factor     math.LegacyDec `json:"factor"`
	Comparable bool           `json:"comparable"`
	Fee        sdk.Coin       `json:"fee"`
}

// PerformanceFactor returns actual/standard, or false when the baseline is
// zero or negative.
func PerformanceFactor(actual, standard math.Int) (math.LegacyDec, bool) {
	if !standard.IsPositive() {
		return math.LegacyZeroDec(), false
	}
	return math.LegacyNewDecFromInt(actual).Quo(math.LegacyNewDecFromInt(standard)), true
}

// PerformanceFee is escrowLevel × (actual − standard), floored at zero and
// capped at the escrowed balance.
func PerformanceFee(escrowLevel math.LegacyDec, actual, standard, escrowed math.Int) math.Int {
	if !standard.IsPositive() || actual.LTE(standard) {
		return math.ZeroInt()
	}
	fee := math.LegacyNewDecFromInt(actual.Sub(standard)).Mul(escrowLevel).TruncateInt()
	return math.MinInt(fee, escrowed)
}

// ProjectedTotals values what the vault and its baseline have not swapped yet
// at price (swap denom per receive denom) and adds it to what each received.
// A nil or non-positive price leaves the unswapped balances out.
func ProjectedTotals(v Vault, price math.LegacyDec) (actual, standard math.Int) {
	cfg := v.DcaPlusConfig
	actual = v.ReceivedAmount.Amount
	standard = cfg.StandardDca.ReceivedAmount.Amount

	if price.IsNil() || !price.IsPositive() {
		return actual, standard
	}
	actual = actual.Add(math.LegacyNewDecFromInt(v.Balance.Amount).Quo(price).TruncateInt())
	standard = standard.Add(math.LegacyNewDecFromInt(cfg.StandardDcaBalance()).Quo(price).TruncateInt())
	return actual, standard
}

// EvaluatePerformance computes the factor and fee for a dca plus vault.
func EvaluatePerformance(v Vault, price math.LegacyDec) Performance {
	cfg := v.DcaPlusConfig
	actual, standard := ProjectedTotals(v, price)
	factor, comparable := PerformanceFactor(actual, standard)
	fee := PerformanceFee(cfg.EscrowLevel, actual, standard, cfg.EscrowedBalance.Amount)
	return Performance{
		Factor:     factor,
		Comparable: comparable,
		Fee:        sdk.NewCoin(v.ReceiveDenom(), fee),
	}
}

// AdvanceStandardDca records what an unadjusted swap of swapAmount would
// have received at price (swap denom per receive denom). It runs on every
// due trigger, whatever the vault itself ends up doing.
func AdvanceStandardDca(cfg DcaPlusConfig, swapAmount math.Int, price math.LegacyDec) DcaPlusConfig {
	if price.IsNil() || !price.IsPositive() {
		return cfg
	}
	standardSwap := math.MinInt(swapAmount, cfg.StandardDcaBalance())
	if !standardSwap.IsPositive() {
		return cfg
	}
	standardReceive := math.LegacyNewDecFromInt(standardSwap).Quo(price).TruncateInt()

	cfg.StandardDca.SwappedAmount = cfg.StandardDca.SwappedAmount.AddAmount(standardSwap)
	cfg.StandardDca.ReceivedAmount = cfg.StandardDca.ReceivedAmount.AddAmount(standardReceive)
	return cfg
}
