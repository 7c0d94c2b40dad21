package bitvavo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// setupServer serves canned Bitvavo responses and returns a client pointed
// at it.
func setupServer(t *testing.T) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/trades", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("market"); got != "BTC-EUR" {
			t.Errorf("market = %q, want BTC-EUR", got)
		}
		w.Write([]byte(`[
			{"timestamp":2000,"market":"BTC-EUR","side":"sell","amount":"1","price":"15.5","fee":"0.01"},
			{"timestamp":1000,"market":"BTC-EUR","side":"buy","amount":"2","price":"10","fee":"0.1"}
		]`))
	})
	mux.HandleFunc("/depositHistory", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"timestamp":1000,"symbol":"BTC","amount":"0.5","status":"completed"}]`))
	})
	mux.HandleFunc("/withdrawalHistory", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/balance", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"BTC","available":"0.75","inOrder":"0.25"}]`))
	})
	mux.HandleFunc("/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"market":"BTC-EUR","price":"43210.55"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &Client{base: srv.URL, http: srv.Client()}
}

func TestClient_Trades(t *testing.T) {
	c := setupServer(t)

	records, err := c.Trades(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Trades() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	// Records are passed through verbatim; sorting is the core's concern.
	if records[0].Side != "sell" || records[0].Amount != "1" || records[0].Timestamp.String() != "2000" {
		t.Errorf("records[0] = %+v, want the verbatim first entry", records[0])
	}
}

func TestClient_Transfers(t *testing.T) {
	c := setupServer(t)

	deposits, err := c.Deposits(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Deposits() failed: %v", err)
	}
	if len(deposits) != 1 || deposits[0].Amount != "0.5" || deposits[0].Status != "completed" {
		t.Errorf("deposits = %+v, want one completed 0.5 deposit", deposits)
	}

	withdrawals, err := c.Withdrawals(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Withdrawals() failed: %v", err)
	}
	if len(withdrawals) != 0 {
		t.Errorf("withdrawals = %+v, want none", withdrawals)
	}
}

func TestClient_Balance(t *testing.T) {
	c := setupServer(t)

	balance, err := c.Balance(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Balance() failed: %v", err)
	}
	if balance.Available != "0.75" || balance.InOrder != "0.25" {
		t.Errorf("balance = %+v, want 0.75/0.25", balance)
	}

	// Unknown assets have a zero balance, not an error.
	balance, err = c.Balance(context.Background(), "DOGE")
	if err != nil {
		t.Fatalf("Balance(DOGE) failed: %v", err)
	}
	if balance.Available != "0" {
		t.Errorf("balance.Available = %q, want 0 for an unknown asset", balance.Available)
	}
}

func TestClient_Price(t *testing.T) {
	c := setupServer(t)

	price, err := c.Price(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("Price() failed: %v", err)
	}
	// The price must stay a string all the way to the decimal parser.
	if price != "43210.55" {
		t.Errorf("Price() = %q, want %q", price, "43210.55")
	}
}

func TestSign(t *testing.T) {
	// Known-answer signature: HMAC-SHA256("secret", "1000GET/v2/balance").
	got := sign("secret", "1000", "GET", "/v2/balance", nil)
	want := "c1ed8051fd5bd5ae946822a295f051e8b1bb30cc5cc7fbe75a4a4721ef94a908"
	if got != want {
		t.Errorf("sign() = %s, want %s", got, want)
	}
}

func TestSigner_Headers(t *testing.T) {
	var gotKey, gotSig, gotTS string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Bitvavo-Access-Key")
		gotSig = r.Header.Get("Bitvavo-Access-Signature")
		gotTS = r.Header.Get("Bitvavo-Access-Timestamp")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	pinned := time.UnixMilli(1700000000000)
	client := &http.Client{Transport: &signer{
		base:   http.DefaultTransport,
		key:    "k",
		secret: "s",
		now:    func() time.Time { return pinned },
	}}

	var out any
	if err := jwget(context.Background(), client, srv.URL+"/balance?symbol=BTC", &out); err != nil {
		t.Fatalf("jwget() failed: %v", err)
	}

	if gotKey != "k" {
		t.Errorf("Bitvavo-Access-Key = %q, want %q", gotKey, "k")
	}
	if gotTS != "1700000000000" {
		t.Errorf("Bitvavo-Access-Timestamp = %q, want the pinned clock", gotTS)
	}
	if want := sign("s", "1700000000000", "GET", "/balance?symbol=BTC", nil); gotSig != want {
		t.Errorf("Bitvavo-Access-Signature = %q, want %q", gotSig, want)
	}
}
