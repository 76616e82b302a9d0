package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendo-machines/vendo/internal/domain"
	"github.com/vendo-machines/vendo/internal/infra/catalog"
	"github.com/vendo-machines/vendo/internal/infra/services"
	"github.com/vendo-machines/vendo/internal/infra/sqlite"
	"github.com/vendo-machines/vendo/internal/machine"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.DB) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.SeedDrinks(catalog.Drinks()))

	log := slogt.New(t)
	payments := services.NewPayments(db, log, "http://localhost:3000")
	stock := services.NewStock(db)

	ctrl := machine.New(machine.DefaultConfig(), clock.New(), log,
		stock, payments, nil, domain.CoinCounts{100: 10})
	t.Cleanup(ctrl.Close)

	srv := NewServer(db, payments, ctrl)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	var body map[string]string
	code := getJSON(t, ts.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestDrinksAndStock(t *testing.T) {
	ts, _ := newTestServer(t)

	var drinks []domain.Drink
	code := getJSON(t, ts.URL+"/api/drinks", &drinks)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, drinks, 24)

	var drink domain.Drink
	code = getJSON(t, ts.URL+"/api/drinks/1.4", &drink)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Calpico Strawberry Flavor", drink.Name)

	var stock struct {
		ID    string `json:"id"`
		Stock int    `json:"stock"`
	}
	code = getJSON(t, ts.URL+"/api/stock/1.4", &stock)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, stock.Stock)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/drinks/9.9", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/stock/9.9", nil))
}

func TestPurchase(t *testing.T) {
	ts, db := newTestServer(t)

	var body struct {
		Success bool   `json:"success"`
		DrinkID string `json:"drinkId"`
		Stock   int    `json:"stock"`
	}
	code := postJSON(t, ts.URL+"/api/purchase", map[string]string{"drinkId": "1.1"}, &body)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	assert.Equal(t, 4, body.Stock)

	// Drain and watch the sold-out refusal.
	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusOK,
			postJSON(t, ts.URL+"/api/purchase", map[string]string{"drinkId": "1.1"}, nil))
	}
	var soldOut struct {
		Error string `json:"error"`
		Stock int    `json:"stock"`
	}
	code = postJSON(t, ts.URL+"/api/purchase", map[string]string{"drinkId": "1.1"}, &soldOut)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Sold out", soldOut.Error)

	n, err := db.GetStock("1.1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, http.StatusBadRequest, postJSON(t, ts.URL+"/api/purchase", map[string]string{}, nil))
	assert.Equal(t, http.StatusNotFound, postJSON(t, ts.URL+"/api/purchase", map[string]string{"drinkId": "9.9"}, nil))
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	ts, db := newTestServer(t)

	var created struct {
		PaymentID string `json:"paymentId"`
		PayURL    string `json:"payUrl"`
		QR        string `json:"qr"`
	}
	code := postJSON(t, ts.URL+"/api/payments", map[string]string{"drinkId": "2.6"}, &created)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, created.PaymentID)
	assert.True(t, strings.HasSuffix(created.PayURL, "/pay/"+created.PaymentID))
	assert.True(t, strings.HasPrefix(created.QR, "data:image/png;base64,"))

	var payment domain.Payment
	code = getJSON(t, ts.URL+"/api/payments/"+created.PaymentID, &payment)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.PaymentPending, payment.Status)

	// The phone page confirms.
	var confirmed struct {
		Success     bool `json:"success"`
		AlreadyPaid bool `json:"alreadyPaid"`
	}
	code = postJSON(t, fmt.Sprintf("%s/pay/%s/confirm", ts.URL, created.PaymentID), nil, &confirmed)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, confirmed.Success)
	assert.False(t, confirmed.AlreadyPaid)

	n, err := db.GetStock("2.6")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// A repeat scan reports alreadyPaid and leaves stock alone.
	code = postJSON(t, fmt.Sprintf("%s/pay/%s/confirm", ts.URL, created.PaymentID), nil, &confirmed)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, confirmed.AlreadyPaid)
	n, _ = db.GetStock("2.6")
	assert.Equal(t, 4, n)

	// Canceling money already taken is refused.
	code = postJSON(t, fmt.Sprintf("%s/pay/%s/cancel", ts.URL, created.PaymentID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/payments/p_missing", nil))
	assert.Equal(t, http.StatusNotFound, postJSON(t, ts.URL+"/pay/p_missing/confirm", nil, nil))
}

func TestPaymentCancelOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	var created struct {
		PaymentID string `json:"paymentId"`
	}
	require.Equal(t, http.StatusOK,
		postJSON(t, ts.URL+"/api/payments", map[string]string{"drinkId": "2.6"}, &created))

	var canceled struct {
		Success   bool   `json:"success"`
		PaymentID string `json:"paymentId"`
	}
	code := postJSON(t, fmt.Sprintf("%s/pay/%s/cancel", ts.URL, created.PaymentID), nil, &canceled)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, canceled.Success)
	assert.Equal(t, created.PaymentID, canceled.PaymentID)
}

func TestMachineCashSessionOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	var snap machine.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/machine", &snap))
	require.Equal(t, domain.StateIdle, snap.State)

	var res machine.Result
	code := postJSON(t, ts.URL+"/api/machine/select", map[string]string{"drinkId": "1.1"}, &res)
	require.Equal(t, http.StatusOK, code)
	require.True(t, res.Accepted)
	assert.Equal(t, domain.StateConfirmSelection, res.To)

	for _, sym := range []string{"yes", "cash"} {
		code = postJSON(t, ts.URL+"/api/machine/event", map[string]string{"symbol": sym}, &res)
		require.Equal(t, http.StatusOK, code)
		require.True(t, res.Accepted, "symbol %s", sym)
	}

	for i := 0; i < 2; i++ {
		code = postJSON(t, ts.URL+"/api/machine/coin", map[string]int{"denomination": 100}, &res)
		require.Equal(t, http.StatusOK, code)
		require.True(t, res.Accepted)
	}
	assert.Equal(t, domain.StatePaymentConfirmed, res.To)

	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/machine", &snap))
	assert.Equal(t, 200, snap.PaidCents)
	assert.NotEmpty(t, snap.History)
}

func TestMachineInputValidationOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest,
		postJSON(t, ts.URL+"/api/machine/select", map[string]string{}, nil))
	assert.Equal(t, http.StatusNotFound,
		postJSON(t, ts.URL+"/api/machine/select", map[string]string{"drinkId": "9.9"}, nil))
	assert.Equal(t, http.StatusBadRequest,
		postJSON(t, ts.URL+"/api/machine/coin", map[string]int{"denomination": 10}, nil))

	// Out-of-place cancel is a reported rejection, not an HTTP error.
	var res machine.Result
	code := postJSON(t, ts.URL+"/api/machine/cancel", nil, &res)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, res.Accepted)
}

func TestQRImageWhenNoneActive(t *testing.T) {
	ts, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/qr/any", nil))
}
