package coinfolio

import (
	"bufio"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"
)

// TransferStatus is the exchange-reported state of a deposit or withdrawal.
type TransferStatus string

const (
	TransferCompleted TransferStatus = "completed"
	TransferPending   TransferStatus = "pending"
	TransferFailed    TransferStatus = "failed"
)

// Transfer is a single deposit or withdrawal of an asset, as reported by the
// exchange.
type Transfer struct {
	Symbol    string
	Amount    Quantity
	Status    TransferStatus
	Timestamp int64 // epoch milliseconds
}

// Time returns the transfer time.
func (t Transfer) Time() time.Time { return time.UnixMilli(t.Timestamp) }

// Completed reports whether the transfer has settled. Only completed
// transfers move the balance; pending or failed ones are ignored by the
// analysis.
func (t Transfer) Completed() bool { return t.Status == TransferCompleted }

// MarshalJSON implements the json.Marshaler interface for Transfer.
func (t Transfer) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", t.Symbol)
	w.Append("amount", t.Amount)
	w.Append("status", string(t.Status))
	w.Append("timestamp", t.Timestamp)
	return w.MarshalJSON()
}

// TransferRecord is the wire-level form of a deposit or withdrawal: the
// amount is a decimal-safe string, and the timestamp may arrive as a string
// or a number.
type TransferRecord struct {
	Symbol    string      `json:"symbol"`
	Amount    string      `json:"amount"`
	Status    string      `json:"status"`
	Timestamp json.Number `json:"timestamp"`
}

// Transfer validates the record and converts it to an exact Transfer.
func (r TransferRecord) Transfer() (Transfer, error) {
	fail := func(err error) (Transfer, error) {
		raw, _ := json.Marshal(r)
		return Transfer{}, &ValidationError{Record: string(raw), Err: err}
	}

	amount, err := ParseQuantity(r.Amount)
	if err != nil {
		return fail(err)
	}
	ts, err := r.Timestamp.Int64()
	if err != nil {
		return fail(err)
	}
	return Transfer{
		Symbol:    r.Symbol,
		Amount:    amount,
		Status:    TransferStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		Timestamp: ts,
	}, nil
}

// DecodeTransfers decodes transfers from a stream of JSONL data, one record
// per line, and returns them in chronological order (oldest first).
func DecodeTransfers(r io.Reader) ([]Transfer, error) {
	var transfers []Transfer
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var rec TransferRecord
		if err := json.Unmarshal(lineBytes, &rec); err != nil {
			return nil, &ValidationError{Record: string(lineBytes), Err: err}
		}
		transfer, err := rec.Transfer()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].Timestamp < transfers[j].Timestamp
	})
	return transfers, nil
}

// ConvertTransfers validates a batch of transfer records. The first invalid
// record aborts the whole batch.
func ConvertTransfers(records []TransferRecord) ([]Transfer, error) {
	transfers := make([]Transfer, 0, len(records))
	for _, rec := range records {
		transfer, err := rec.Transfer()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, nil
}

// EncodeTransfer appends a single transfer as one JSONL line.
func EncodeTransfer(w io.Writer, t Transfer) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
