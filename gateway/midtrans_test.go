package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMidtrans(t *testing.T, handler http.HandlerFunc) *Midtrans {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	m := NewMidtrans("server-key", false)
	m.SnapURL = srv.URL
	m.CoreAPIURL = srv.URL
	return m
}

func TestMidtransCreateTransaction(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	m := testMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{
			"token":        "snap-token-123",
			"redirect_url": "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token-123",
		})
	})

	res, err := m.CreateTransaction(context.Background(), CreateRequest{
		OrderID:     "YT-1",
		Amount:      50000,
		Description: "YouTube Premium Share",
		Month:       "2026-02",
		Name:        "Budi",
		Phone:       "0812",
	})
	require.NoError(t, err)

	assert.Equal(t, "snap-token-123", res.Token)
	assert.Equal(t, int64(50000), res.TotalAmount)
	assert.NotEmpty(t, res.RedirectURL)

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("server-key:"))
	assert.Equal(t, wantAuth, gotAuth)

	details := gotBody["transaction_details"].(map[string]interface{})
	assert.Equal(t, "YT-1", details["order_id"])
	assert.Equal(t, float64(50000), details["gross_amount"])
}

func TestMidtransCreateFailure(t *testing.T) {
	m := testMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error_messages": []string{"unauthorized"},
		})
	})

	_, err := m.CreateTransaction(context.Background(), CreateRequest{OrderID: "YT-1", Amount: 1000})
	require.Error(t, err)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "MIDTRANS", gwErr.Gateway)
}

func TestMidtransStatus(t *testing.T) {
	m := testMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/YT-1/status", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"order_id":           "YT-1",
			"transaction_status": "capture",
			"fraud_status":       "accept",
			"status_code":        "200",
		})
	})

	st, err := m.Status(context.Background(), "YT-1")
	require.NoError(t, err)
	assert.Equal(t, "YT-1", st.OrderID)
	assert.Equal(t, "capture", st.TransactionStatus)
	assert.Equal(t, "accept", st.FraudStatus)
	assert.Equal(t, "capture", st.Raw["transaction_status"])
}

func TestMidtransStatusRemoteError(t *testing.T) {
	m := testMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		json.NewEncoder(w).Encode(map[string]string{
			"status_message": "Transaction doesn't exist.",
		})
	})

	_, err := m.Status(context.Background(), "YT-nope")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Contains(t, gwErr.Message, "404")
}

func TestParseNotification(t *testing.T) {
	m := NewMidtrans("server-key", false)

	sum := sha512.Sum512([]byte("YT-1" + "200" + "50000.00" + "server-key"))
	payload, _ := json.Marshal(map[string]string{
		"order_id":           "YT-1",
		"status_code":        "200",
		"gross_amount":       "50000.00",
		"transaction_status": "settlement",
		"signature_key":      hex.EncodeToString(sum[:]),
	})

	st, err := m.ParseNotification(payload)
	require.NoError(t, err)
	assert.Equal(t, "YT-1", st.OrderID)
	assert.Equal(t, "settlement", st.TransactionStatus)
}

func TestParseNotificationBadSignature(t *testing.T) {
	m := NewMidtrans("server-key", false)

	payload, _ := json.Marshal(map[string]string{
		"order_id":           "YT-1",
		"status_code":        "200",
		"gross_amount":       "50000.00",
		"transaction_status": "settlement",
		"signature_key":      "deadbeef",
	})

	_, err := m.ParseNotification(payload)
	assert.Error(t, err)
}

func TestParseNotificationMissingOrder(t *testing.T) {
	m := NewMidtrans("server-key", false)

	_, err := m.ParseNotification([]byte(`{"transaction_status":"settlement"}`))
	assert.Error(t, err)

	_, err = m.ParseNotification([]byte(`not json`))
	assert.Error(t, err)
}
