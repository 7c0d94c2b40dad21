package coinfolio

// DiscrepancyBreakdown partitions the gap between the FIFO-implied position
// and the exchange-reported actual balance into the part explained by net
// transfers, the part explained by likely rewards, and the remainder.
type DiscrepancyBreakdown struct {
	TotalDiscrepancy      Quantity // actual - fifo
	TransferExplained     Quantity
	RewardsExplained      Quantity
	Unexplained           Quantity
	ExplanationPercentage Percent
}

// MarshalJSON implements the json.Marshaler interface for DiscrepancyBreakdown.
func (b DiscrepancyBreakdown) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("total_discrepancy", b.TotalDiscrepancy)
	w.Append("transfer_explained", b.TransferExplained)
	w.Append("rewards_explained", b.RewardsExplained)
	w.Append("unexplained", b.Unexplained)
	w.Append("explanation_percentage", float64(b.ExplanationPercentage))
	return w.MarshalJSON()
}

// CalculateDiscrepancyBreakdown explains the difference between fifoAmount
// and actualAmount using the transfer summary. Pure function, no side
// effects.
//
// The explanation percentage is 100 when there is nothing to explain, and is
// deliberately not clamped otherwise: a value above 100 means transfers and
// rewards overcorrect the gap (for instance a withdrawal inflating its
// magnitude), which is a data-quality signal callers need to see.
func CalculateDiscrepancyBreakdown(fifoAmount, actualAmount Quantity, transfers TransferSummary) DiscrepancyBreakdown {
	total := actualAmount.Sub(fifoAmount)
	transferExplained := transfers.NetTransfers
	rewardsExplained := transfers.PotentialRewards
	unexplained := total.Sub(transferExplained).Sub(rewardsExplained)

	percentage := Percent(100)
	if !total.IsZero() {
		explained := transferExplained.Add(rewardsExplained).Abs()
		ratio := explained.Div(total.Abs()).Mul(Q(100))
		percentage = Percent(ratioAsFloat(ratio))
	}

	return DiscrepancyBreakdown{
		TotalDiscrepancy:      total,
		TransferExplained:     transferExplained,
		RewardsExplained:      rewardsExplained,
		Unexplained:           unexplained,
		ExplanationPercentage: percentage,
	}
}

// ratioAsFloat converts an exact percentage to its float form. Percentages
// only drive status classification and display, never further arithmetic, so
// the loss of precision is acceptable here.
func ratioAsFloat(q Quantity) float64 {
	return q.value.InexactFloat64()
}
