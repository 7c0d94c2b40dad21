package renderer

import (
	"github.com/etnz/coinfolio"
)

// Transfers is a struct to represent one asset's transfer analysis in a
// report.
type Transfers struct {
	// Symbol of the asset.
	Symbol string `json:"symbol"`
	// TotalDeposits is the sum of all completed deposit amounts.
	TotalDeposits coinfolio.Quantity `json:"totalDeposits"`
	// TotalWithdrawals is the sum of all completed withdrawal amounts.
	TotalWithdrawals coinfolio.Quantity `json:"totalWithdrawals"`
	// NetTransfers is TotalDeposits - TotalWithdrawals.
	NetTransfers coinfolio.Quantity `json:"netTransfers"`
	// DepositCount is the number of completed deposits.
	DepositCount int `json:"depositCount"`
	// WithdrawalCount is the number of completed withdrawals.
	WithdrawalCount int `json:"withdrawalCount"`
	// PotentialRewards is the heuristic estimate of reward-like deposits.
	PotentialRewards coinfolio.Quantity `json:"potentialRewards"`
}

// NewTransfers creates a new Transfers view from a transfer summary.
func NewTransfers(symbol string, s coinfolio.TransferSummary) *Transfers {
	return &Transfers{
		Symbol:           symbol,
		TotalDeposits:    s.TotalDeposits,
		TotalWithdrawals: s.TotalWithdrawals,
		NetTransfers:     s.NetTransfers,
		DepositCount:     s.DepositCount,
		WithdrawalCount:  s.WithdrawalCount,
		PotentialRewards: s.PotentialRewards,
	}
}
