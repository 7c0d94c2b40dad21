package renderer

import (
	"strings"

	"github.com/etnz/coinfolio"
)

// Reconciliation is a struct to represent a portfolio reconciliation in a
// report.
type Reconciliation struct {
	// Assets holds the per-asset rows, sorted by symbol.
	Assets []ReconciliationAsset `json:"assets"`
	// Totals aggregates the per-asset results.
	Totals ReconciliationTotals `json:"totals"`
	// Summary is the one-line portfolio verdict.
	Summary string `json:"summary"`
}

// ReconciliationAsset represents a single asset row.
type ReconciliationAsset struct {
	Symbol string `json:"symbol"`
	// Status is the human readable reconciliation status.
	Status string `json:"status"`
	// Error is set when the exchange failed for this asset; every other
	// field is then zero.
	Error       string             `json:"error,omitempty"`
	Amount      coinfolio.Quantity `json:"amount"`
	Actual      coinfolio.Quantity `json:"actual"`
	Value       coinfolio.Money    `json:"value"`
	Discrepancy coinfolio.Quantity `json:"discrepancy"`
	Explained   coinfolio.Percent  `json:"explained"`
}

// Failed reports whether the row is an exchange failure.
func (a ReconciliationAsset) Failed() bool { return a.Error != "" }

// ReconciliationTotals represents the summed portfolio figures.
type ReconciliationTotals struct {
	Value             coinfolio.Money    `json:"value"`
	Realized          coinfolio.Money    `json:"realized"`
	Unrealized        coinfolio.Money    `json:"unrealized"`
	TotalDiscrepancy  coinfolio.Quantity `json:"totalDiscrepancy"`
	TransferExplained coinfolio.Quantity `json:"transferExplained"`
	RewardsExplained  coinfolio.Quantity `json:"rewardsExplained"`
	Unexplained       coinfolio.Quantity `json:"unexplained"`
	Explained         coinfolio.Percent  `json:"explained"`
}

// NewReconciliation creates a new Reconciliation view from a report.
// It populates the struct with all the necessary data for rendering.
func NewReconciliation(r *coinfolio.ReconciliationReport) *Reconciliation {
	v := &Reconciliation{
		Assets: make([]ReconciliationAsset, 0, len(r.Assets)),
		Totals: ReconciliationTotals{
			Value:             r.Totals.Value,
			Realized:          r.Totals.Realized,
			Unrealized:        r.Totals.Unrealized,
			TotalDiscrepancy:  r.Totals.TotalDiscrepancy,
			TransferExplained: r.Totals.TransferExplained,
			RewardsExplained:  r.Totals.RewardsExplained,
			Unexplained:       r.Totals.Unexplained,
			Explained:         r.Totals.ExplanationPercentage,
		},
		Summary: r.Summary,
	}

	for _, a := range r.Assets {
		row := ReconciliationAsset{
			Symbol: a.Symbol,
			Status: statusLabel(a.Status),
		}
		if a.Err != nil {
			row.Error = a.Err.Error()
			v.Assets = append(v.Assets, row)
			continue
		}
		row.Amount = a.PnL.Amount
		row.Actual = a.Actual
		row.Value = a.PnL.Value
		row.Discrepancy = a.Breakdown.TotalDiscrepancy
		row.Explained = a.Breakdown.ExplanationPercentage
		v.Assets = append(v.Assets, row)
	}
	return v
}

// statusLabel turns a machine status into its report wording.
func statusLabel(s coinfolio.ReconciliationStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
