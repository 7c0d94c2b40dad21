package coinfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Balance is the exchange-reported balance of one asset. The amount to
// reconcile against is the total: units sitting in open orders still belong
// to the holding.
type Balance struct {
	Available Quantity
	InOrder   Quantity
}

// Total returns available + inOrder.
func (b Balance) Total() Quantity { return b.Available.Add(b.InOrder) }

// MarshalJSON implements the json.Marshaler interface for Balance.
func (b Balance) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("available", b.Available)
	w.Append("in_order", b.InOrder)
	w.Append("total", b.Total())
	return w.MarshalJSON()
}

// BalanceRecord is the wire-level form of a balance, both fields as
// decimal-safe strings.
type BalanceRecord struct {
	Available string `json:"available"`
	InOrder   string `json:"inOrder"`
}

// Balance validates the record and converts it to an exact Balance.
func (r BalanceRecord) Balance() (Balance, error) {
	fail := func(err error) (Balance, error) {
		raw, _ := json.Marshal(r)
		return Balance{}, &ValidationError{Record: string(raw), Err: err}
	}
	available, err := ParseQuantity(r.Available)
	if err != nil {
		return fail(err)
	}
	inOrder := Q(0)
	if r.InOrder != "" {
		if inOrder, err = ParseQuantity(r.InOrder); err != nil {
			return fail(err)
		}
	}
	return Balance{Available: available, InOrder: inOrder}, nil
}

// Exchange supplies the per-asset data the reconciliation needs. The crypto
// exchange client implements it; tests use an in-memory fake. All numeric
// values cross this boundary as decimal-safe strings.
type Exchange interface {
	// Trades returns the full trade history for a symbol, in any order.
	Trades(ctx context.Context, symbol string) ([]TradeRecord, error)
	// Deposits returns the deposit history for a symbol.
	Deposits(ctx context.Context, symbol string) ([]TransferRecord, error)
	// Withdrawals returns the withdrawal history for a symbol.
	Withdrawals(ctx context.Context, symbol string) ([]TransferRecord, error)
	// Balance returns the current balance for a symbol.
	Balance(ctx context.Context, symbol string) (BalanceRecord, error)
	// Price returns the current EUR price for a symbol as a decimal string.
	Price(ctx context.Context, symbol string) (string, error)
}

// ReconciliationStatus qualifies how well an asset's discrepancy is explained.
type ReconciliationStatus string

const (
	PerfectMatch       ReconciliationStatus = "perfect_match"
	FullyExplained     ReconciliationStatus = "fully_explained"
	WellExplained      ReconciliationStatus = "well_explained"
	PartiallyExplained ReconciliationStatus = "partially_explained"
	PoorlyExplained    ReconciliationStatus = "poorly_explained"
	ReconcileError     ReconciliationStatus = "error"
)

// discrepancyEpsilon is the absolute discrepancy below which an asset counts
// as perfectly matched. Exchanges report 8 to 18 decimals; anything under a
// millionth of a unit is representation noise, not a missing transaction.
var discrepancyEpsilon = Q(0.000001)

// classify maps a breakdown to a qualitative status using fixed thresholds
// on the absolute discrepancy and the explanation percentage.
func classify(b DiscrepancyBreakdown) ReconciliationStatus {
	switch {
	case b.TotalDiscrepancy.Abs().LessThan(discrepancyEpsilon):
		return PerfectMatch
	case b.ExplanationPercentage > 95:
		return FullyExplained
	case b.ExplanationPercentage > 80:
		return WellExplained
	case b.ExplanationPercentage > 50:
		return PartiallyExplained
	default:
		return PoorlyExplained
	}
}

// AssetReconciliation is the complete reconciliation result for one asset.
// When the exchange fails for this asset, Err is set, Status is "error" and
// every other field is zero; the failure never leaks into other assets.
type AssetReconciliation struct {
	Symbol    string
	PnL       PnLResult
	Actual    Quantity
	Transfers TransferSummary
	Breakdown DiscrepancyBreakdown
	Status    ReconciliationStatus
	Err       error
}

// MarshalJSON implements the json.Marshaler interface for AssetReconciliation.
func (a AssetReconciliation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", a.Symbol)
	w.Append("status", string(a.Status))
	if a.Err != nil {
		w.Append("error", a.Err.Error())
		return w.MarshalJSON()
	}
	w.Append("pnl", a.PnL)
	w.Append("actual_amount", a.Actual)
	w.Append("transfers", a.Transfers)
	w.Append("breakdown", a.Breakdown)
	return w.MarshalJSON()
}

// PortfolioTotals aggregates the per-asset results. Decimal fields are summed
// first and the explanation percentage is derived from the sums; averaging
// per-asset percentages would let a large discrepancy on a dust-sized asset
// distort the portfolio view.
type PortfolioTotals struct {
	Value                 Money // market value of all positions
	Realized              Money
	Unrealized            Money
	TotalDiscrepancy      Quantity
	TransferExplained     Quantity
	RewardsExplained      Quantity
	Unexplained           Quantity
	ExplanationPercentage Percent
}

// MarshalJSON implements the json.Marshaler interface for PortfolioTotals.
func (t PortfolioTotals) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("value_eur", t.Value)
	w.Append("realised_eur", t.Realized)
	w.Append("unrealised_eur", t.Unrealized)
	w.Append("total_discrepancy", t.TotalDiscrepancy)
	w.Append("transfer_explained", t.TransferExplained)
	w.Append("rewards_explained", t.RewardsExplained)
	w.Append("unexplained", t.Unexplained)
	w.Append("explanation_percentage", float64(t.ExplanationPercentage))
	return w.MarshalJSON()
}

// ReconciliationReport is the portfolio-wide reconciliation: per-asset
// results (sorted by symbol), summed totals and a one-line verdict.
type ReconciliationReport struct {
	Assets  []AssetReconciliation
	Totals  PortfolioTotals
	Summary string
}

// MarshalJSON implements the json.Marshaler interface for ReconciliationReport.
func (r ReconciliationReport) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("assets", r.Assets)
	w.Append("totals", r.Totals)
	w.Append("summary", r.Summary)
	return w.MarshalJSON()
}

// Reconciler runs the full reconciliation for a set of assets against an
// exchange. The zero Heuristic means DefaultRewardHeuristic; Parallelism
// caps the per-asset fan-out, 0 meaning one goroutine per asset.
type Reconciler struct {
	Exchange    Exchange
	Heuristic   RewardHeuristic
	Parallelism int
}

// NewReconciler creates a Reconciler with the default reward heuristic.
func NewReconciler(exchange Exchange) *Reconciler {
	return &Reconciler{Exchange: exchange, Heuristic: DefaultRewardHeuristic()}
}

// ReconcilePortfolio reconciles every symbol and aggregates the results.
//
// Assets are independent, so they are processed concurrently. A failure on
// one asset is recorded on that asset only and never aborts the others: the
// report is always best-effort and complete, with failed assets flagged.
func (r *Reconciler) ReconcilePortfolio(ctx context.Context, symbols []string) *ReconciliationReport {
	results := make([]AssetReconciliation, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	if r.Parallelism > 0 {
		g.SetLimit(r.Parallelism)
	}
	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = r.ReconcileAsset(ctx, symbol)
			return nil
		})
	}
	// Per-asset errors are captured in the results, never returned.
	g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Symbol < results[j].Symbol })
	return report(results)
}

// ReconcileAsset runs the whole pipeline for one symbol: trade history
// through the FIFO calculator, transfer history through the analyzer, and
// both against the actual balance through the discrepancy breakdown.
func (r *Reconciler) ReconcileAsset(ctx context.Context, symbol string) AssetReconciliation {
	fail := func(stage string, err error) AssetReconciliation {
		return AssetReconciliation{
			Symbol: symbol,
			Status: ReconcileError,
			Err:    fmt.Errorf("%s %s: %w", stage, symbol, err),
		}
	}

	tradeRecords, err := r.Exchange.Trades(ctx, symbol)
	if err != nil {
		return fail("fetching trades for", err)
	}
	trades, err := ConvertTrades(tradeRecords)
	if err != nil {
		return fail("decoding trades for", err)
	}

	priceStr, err := r.Exchange.Price(ctx, symbol)
	if err != nil {
		return fail("fetching price for", err)
	}
	price, err := ParseMoney(priceStr)
	if err != nil {
		return fail("decoding price for", err)
	}

	pnl, err := CalculatePnL(trades, price)
	if err != nil {
		return fail("calculating pnl for", err)
	}

	balanceRecord, err := r.Exchange.Balance(ctx, symbol)
	if err != nil {
		return fail("fetching balance for", err)
	}
	balance, err := balanceRecord.Balance()
	if err != nil {
		return fail("decoding balance for", err)
	}

	deposits, err := r.transfers(ctx, symbol, r.Exchange.Deposits)
	if err != nil {
		return fail("fetching deposits for", err)
	}
	withdrawals, err := r.transfers(ctx, symbol, r.Exchange.Withdrawals)
	if err != nil {
		return fail("fetching withdrawals for", err)
	}

	heuristic := r.Heuristic
	if heuristic.MinSimilar == 0 && heuristic.RoundDenominations == nil {
		heuristic = DefaultRewardHeuristic()
	}
	summary := heuristic.Analyze(deposits, withdrawals)
	breakdown := CalculateDiscrepancyBreakdown(pnl.Amount, balance.Total(), summary)

	return AssetReconciliation{
		Symbol:    symbol,
		PnL:       pnl,
		Actual:    balance.Total(),
		Transfers: summary,
		Breakdown: breakdown,
		Status:    classify(breakdown),
	}
}

// transfers fetches and decodes one side of the transfer history.
func (r *Reconciler) transfers(ctx context.Context, symbol string, fetch func(context.Context, string) ([]TransferRecord, error)) ([]Transfer, error) {
	records, err := fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return ConvertTransfers(records)
}

// report aggregates per-asset results into the portfolio report.
func report(assets []AssetReconciliation) *ReconciliationReport {
	var totals PortfolioTotals
	discrepancies := 0
	failures := 0

	for _, a := range assets {
		if a.Err != nil {
			failures++
			continue
		}
		totals.Value = totals.Value.Add(a.PnL.Value)
		totals.Realized = totals.Realized.Add(a.PnL.Realized)
		totals.Unrealized = totals.Unrealized.Add(a.PnL.Unrealized)
		totals.TotalDiscrepancy = totals.TotalDiscrepancy.Add(a.Breakdown.TotalDiscrepancy)
		totals.TransferExplained = totals.TransferExplained.Add(a.Breakdown.TransferExplained)
		totals.RewardsExplained = totals.RewardsExplained.Add(a.Breakdown.RewardsExplained)
		totals.Unexplained = totals.Unexplained.Add(a.Breakdown.Unexplained)
		if !a.Breakdown.TotalDiscrepancy.Abs().LessThan(discrepancyEpsilon) {
			discrepancies++
		}
	}

	// Same formula as the per-asset breakdown, applied to the summed totals.
	totals.ExplanationPercentage = Percent(100)
	if !totals.TotalDiscrepancy.IsZero() {
		explained := totals.TransferExplained.Add(totals.RewardsExplained).Abs()
		totals.ExplanationPercentage = Percent(ratioAsFloat(explained.Div(totals.TotalDiscrepancy.Abs()).Mul(Q(100))))
	}

	return &ReconciliationReport{
		Assets:  assets,
		Totals:  totals,
		Summary: summarize(len(assets), discrepancies, failures, totals.ExplanationPercentage),
	}
}

// summarize derives the human-readable verdict from the number of assets
// with discrepancies and the portfolio-wide explanation percentage.
func summarize(assets, discrepancies, failures int, explained Percent) string {
	var quality string
	switch {
	case explained > 90:
		quality = "excellent"
	case explained > 70:
		quality = "good"
	case explained > 50:
		quality = "fair"
	default:
		quality = "poor"
	}

	s := fmt.Sprintf("%d of %d assets show balance discrepancies; %s explanation coverage (%s)",
		discrepancies, assets, quality, explained)
	if failures > 0 {
		s += fmt.Sprintf("; %d assets failed and were skipped", failures)
	}
	return s
}
