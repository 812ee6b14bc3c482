package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/theazran/tagihYT/cache"
	"github.com/theazran/tagihYT/gateway"
	"github.com/theazran/tagihYT/model"
	"github.com/theazran/tagihYT/recon"
	"github.com/theazran/tagihYT/store"
)

type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

type TransactionController struct {
	Store    *store.Store
	Gateways gateway.Registry
	Engine   *recon.Engine
	Midtrans *gateway.Midtrans
	Notifier Notifier
	Cache    *cache.Cache

	SummaryTarget      int64
	SummaryTargetCount int
}

// Create validates the checkout request, creates the remote transaction
// on the chosen gateway and persists the record. Nothing is stored when
// the gateway call fails.
func (tc *TransactionController) Create(c *fiber.Ctx) error {
	var body struct {
		Amount          int64  `json:"amount"`
		Description     string `json:"description"`
		Month           string `json:"month"`
		Gateway         string `json:"gateway"`
		CustomerDetails struct {
			FirstName string `json:"first_name"`
			Email     string `json:"email"`
			Phone     string `json:"phone"`
		} `json:"customer_details"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": "invalid payload"})
	}

	if body.Amount <= 0 {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": "amount must be positive"})
	}
	if body.Month == "" {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": "month is required"})
	}

	gatewayName := body.Gateway
	if gatewayName == "" {
		gatewayName = model.GatewayMidtrans
	}
	gw, ok := tc.Gateways.Lookup(gatewayName)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": "unknown gateway " + gatewayName})
	}

	orderID := fmt.Sprintf("YT-%d", time.Now().UnixMilli())
	log.Printf("Creating transaction %s: amount=%d gateway=%s", orderID, body.Amount, gatewayName)

	description := body.Description
	if description == "" {
		description = "YouTube Premium Share"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := gw.CreateTransaction(ctx, gateway.CreateRequest{
		OrderID:     orderID,
		Amount:      body.Amount,
		Description: description,
		Month:       body.Month,
		Name:        body.CustomerDetails.FirstName,
		Email:       body.CustomerDetails.Email,
		Phone:       body.CustomerDetails.Phone,
	})
	if err != nil {
		log.Printf("Gateway create failed for %s: %v", orderID, err)
		return c.Status(502).JSON(fiber.Map{"status": false, "message": err.Error()})
	}

	name := body.CustomerDetails.FirstName
	if name == "" {
		name = "Member"
	}

	tx := &model.Transaction{
		OrderID:   orderID,
		Name:      name,
		Phone:     body.CustomerDetails.Phone,
		Amount:    res.TotalAmount,
		Month:     body.Month,
		Status:    model.StatusPending,
		Gateway:   gatewayName,
		Token:     res.Token,
		Signature: res.Signature,
		QrisURL:   res.QrisURL,
	}
	if err := tc.Store.Create(ctx, tx); err != nil {
		return c.Status(500).JSON(fiber.Map{"status": false, "message": err.Error()})
	}

	tc.Cache.Invalidate(ctx, "transactions:all", "summary:"+body.Month)

	data := fiber.Map{
		"gateway":  gatewayName,
		"order_id": orderID,
	}
	switch gatewayName {
	case model.GatewayKlikQRIS:
		data["signature"] = res.Signature
		data["qris_url"] = res.QrisURL
		data["total_amount"] = res.TotalAmount
	default:
		data["token"] = res.Token
		data["redirect_url"] = res.RedirectURL
	}

	return c.JSON(fiber.Map{"status": true, "data": data})
}

// Check is the manual reconciliation endpoint.
func (tc *TransactionController) Check(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	log.Printf("Checking status for %s...", orderID)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := tc.Engine.Reconcile(ctx, orderID, recon.TriggerManual)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"status": false, "message": "transaction not found"})
	}
	if errors.Is(err, gateway.ErrStatusUnsupported) {
		return c.Status(409).JSON(fiber.Map{"status": false, "message": "gateway does not support status checks"})
	}
	if err != nil {
		log.Printf("Error checking status: %v", err)
		return c.Status(502).JSON(fiber.Map{"status": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"status": true,
		"data": fiber.Map{
			"status":   result.Status,
			"original": result.Raw,
			"db":       result.Transaction,
		},
	})
}

// Webhook receives Midtrans payment notifications. Acknowledgement is
// decoupled from the reconciliation outcome: once the payload parses and
// its signature checks out, the gateway gets a 200 so it stops
// redelivering, whatever happens internally.
func (tc *TransactionController) Webhook(c *fiber.Ctx) error {
	st, err := tc.Midtrans.ParseNotification(c.Body())
	if err != nil {
		log.Printf("Webhook rejected: %v", err)
		return c.Status(400).SendString("Bad Request")
	}

	log.Printf("Webhook received: %s | Status: %s", st.OrderID, st.TransactionStatus)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := tc.Engine.HandleWebhook(ctx, st); err != nil {
		log.Printf("Webhook reconciliation for %s failed: %v", st.OrderID, err)
	}

	return c.SendString("OK")
}

// List returns every transaction, newest first. Admin only.
func (tc *TransactionController) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cached, ok := tc.Cache.Get(ctx, "transactions:all"); ok {
		c.Set("Content-Type", "application/json")
		return c.SendString(cached)
	}

	txs, err := tc.Store.FindAll(ctx)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if txs == nil {
		txs = []model.Transaction{}
	}

	if encoded, err := json.Marshal(txs); err == nil {
		tc.Cache.Set(ctx, "transactions:all", string(encoded), 5*time.Minute)
	}

	return c.JSON(txs)
}

// Summary aggregates the collected amount for a month.
func (tc *TransactionController) Summary(c *fiber.Ctx) error {
	month := c.Query("month")
	if month == "" {
		return c.JSON(fiber.Map{"total": 0, "count": 0})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cached, ok := tc.Cache.Get(ctx, "summary:"+month); ok {
		c.Set("Content-Type", "application/json")
		return c.SendString(cached)
	}

	txs, err := tc.Store.FindByMonthAndStatuses(ctx, month, model.SuccessStatuses())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	total, count := summarize(txs)
	resp := fiber.Map{
		"total":        total,
		"count":        count,
		"target":       tc.SummaryTarget,
		"target_count": tc.SummaryTargetCount,
	}

	if encoded, err := json.Marshal(resp); err == nil {
		tc.Cache.Set(ctx, "summary:"+month, string(encoded), 5*time.Minute)
	}

	return c.JSON(resp)
}

// Delete removes a transaction. Idempotent. Admin only.
func (tc *TransactionController) Delete(c *fiber.Ctx) error {
	orderID := c.Params("orderId")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := tc.Store.FindByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	if err := tc.Store.Delete(ctx, orderID); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	keys := []string{"transactions:all"}
	if tx != nil {
		keys = append(keys, "summary:"+tx.Month)
	}
	tc.Cache.Invalidate(ctx, keys...)

	return c.JSON(fiber.Map{"status": true, "message": "Transaction deleted"})
}

// OverrideStatus forces a canonical status on a transaction, the manual
// path for gateways that cannot be polled. Admin only.
func (tc *TransactionController) OverrideStatus(c *fiber.Ctx) error {
	orderID := c.Params("orderId")

	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": "invalid payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := tc.Engine.Override(ctx, orderID, body.Status)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"status": false, "message": "transaction not found"})
	}
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"status": true, "data": result.Transaction})
}

// SendWA proxies a manual WhatsApp message. Admin only.
func (tc *TransactionController) SendWA(c *fiber.Ctx) error {
	var body struct {
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": "invalid payload"})
	}
	if body.Phone == "" || body.Message == "" {
		return c.Status(400).JSON(fiber.Map{"status": false, "message": "Missing phone or message"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := tc.Notifier.Send(ctx, body.Phone, body.Message); err != nil {
		return c.Status(502).JSON(fiber.Map{"status": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"status": true, "message": "Sent"})
}

func summarize(txs []model.Transaction) (total int64, count int) {
	for _, tx := range txs {
		total += tx.Amount
		count++
	}
	return total, count
}
