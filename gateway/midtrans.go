package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/theazran/tagihYT/model"
)

// Midtrans adapts the Snap checkout API (create) and the Core API v2
// (status, webhook payloads).
type Midtrans struct {
	ServerKey  string
	SnapURL    string
	CoreAPIURL string
	Client     *http.Client
}

func NewMidtrans(serverKey string, production bool) *Midtrans {
	snapURL := "https://app.sandbox.midtrans.com/snap/v1"
	coreURL := "https://api.sandbox.midtrans.com/v2"
	if production {
		snapURL = "https://app.midtrans.com/snap/v1"
		coreURL = "https://api.midtrans.com/v2"
	}
	return &Midtrans{
		ServerKey:  serverKey,
		SnapURL:    snapURL,
		CoreAPIURL: coreURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *Midtrans) Name() string { return model.GatewayMidtrans }

func (m *Midtrans) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(m.ServerKey+":"))
}

func (m *Midtrans) CreateTransaction(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	name := req.Name
	if name == "" {
		name = "Member"
	}
	email := req.Email
	if email == "" {
		email = "member@example.com"
	}

	payload := map[string]interface{}{
		"transaction_details": map[string]interface{}{
			"order_id":     req.OrderID,
			"gross_amount": req.Amount,
		},
		"credit_card": map[string]interface{}{"secure": true},
		"customer_details": map[string]interface{}{
			"first_name": name,
			"email":      email,
			"phone":      req.Phone,
		},
		"item_details": []map[string]interface{}{{
			"id":       "YT-PREMIUM-" + req.Month,
			"price":    req.Amount,
			"quantity": 1,
			"name":     req.Description,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", m.SnapURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", m.authHeader())

	resp, err := m.Client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Gateway: m.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	var out struct {
		Token         string   `json:"token"`
		RedirectURL   string   `json:"redirect_url"`
		ErrorMessages []string `json:"error_messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &GatewayError{Gateway: m.Name(), Message: "invalid snap response: " + err.Error()}
	}
	if resp.StatusCode >= 400 || out.Token == "" {
		return nil, &GatewayError{
			Gateway: m.Name(),
			Message: fmt.Sprintf("snap create failed (%d): %v", resp.StatusCode, out.ErrorMessages),
		}
	}

	return &CreateResult{
		TotalAmount: req.Amount,
		Token:       out.Token,
		RedirectURL: out.RedirectURL,
	}, nil
}

func (m *Midtrans) Status(ctx context.Context, orderID string) (*StatusResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", m.CoreAPIURL+"/"+orderID+"/status", nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", m.authHeader())

	resp, err := m.Client.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Gateway: m.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &GatewayError{Gateway: m.Name(), Message: "invalid status response: " + err.Error()}
	}
	if resp.StatusCode >= 400 {
		return nil, &GatewayError{
			Gateway: m.Name(),
			Message: fmt.Sprintf("status query failed (%d): %v", resp.StatusCode, raw["status_message"]),
		}
	}

	return &StatusResult{
		OrderID:           str(raw["order_id"]),
		TransactionStatus: str(raw["transaction_status"]),
		FraudStatus:       str(raw["fraud_status"]),
		Raw:               raw,
	}, nil
}

// ParseNotification decodes a webhook payload and checks its signature:
// sha512(order_id + status_code + gross_amount + server_key).
func (m *Midtrans) ParseNotification(body []byte) (*StatusResult, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid notification payload: %w", err)
	}

	orderID := str(raw["order_id"])
	if orderID == "" {
		return nil, fmt.Errorf("notification missing order_id")
	}

	signature := str(raw["signature_key"])
	expected := m.signature(orderID, str(raw["status_code"]), str(raw["gross_amount"]))
	if signature != expected {
		return nil, fmt.Errorf("invalid notification signature for %s", orderID)
	}

	return &StatusResult{
		OrderID:           orderID,
		TransactionStatus: str(raw["transaction_status"]),
		FraudStatus:       str(raw["fraud_status"]),
		Raw:               raw,
	}, nil
}

func (m *Midtrans) signature(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + m.ServerKey))
	return hex.EncodeToString(sum[:])
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
