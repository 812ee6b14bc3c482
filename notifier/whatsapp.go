// Package notifier sends WhatsApp messages through the wa-api relay.
// Delivery is best effort: callers log failures and move on.
package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type WhatsApp struct {
	BaseURL string
	UserID  string
	Client  *http.Client
}

func NewWhatsApp(baseURL, userID string) *WhatsApp {
	return &WhatsApp{
		BaseURL: baseURL,
		UserID:  userID,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WhatsApp) Send(ctx context.Context, phone, message string) error {
	if phone == "" {
		return nil
	}

	to := FormatPhone(phone)
	endpoint := fmt.Sprintf("%s/send-text?userId=%s&to=%s&message=%s",
		w.BaseURL,
		url.QueryEscape(w.UserID),
		url.QueryEscape(to),
		url.QueryEscape(message),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("wa send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("wa send failed: status %d", resp.StatusCode)
	}
	return nil
}

// FormatPhone normalizes an Indonesian phone number into the relay's JID
// form: digits only, leading 0 replaced with 62, @s.whatsapp.net suffix.
func FormatPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	formatted := digits.String()
	if strings.HasPrefix(formatted, "0") {
		formatted = "62" + formatted[1:]
	}
	if !strings.HasSuffix(formatted, "@s.whatsapp.net") {
		formatted += "@s.whatsapp.net"
	}
	return formatted
}

// PaymentReceivedMessage is the template sent when a payment settles.
func PaymentReceivedMessage(name string, amount int64, month string) string {
	return fmt.Sprintf(
		"*Pembayaran Diterima!*\n\nHalo %s,\nPembayaran YouTube Premium Anda sebesar Rp %s untuk bulan %s telah berhasil.\n\nTerima kasih! 🎉",
		name, FormatRupiah(amount), month,
	)
}

// FormatRupiah groups digits with dots: 50000 -> "50.000".
func FormatRupiah(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteRune('.')
		}
		out.WriteRune(r)
	}

	if neg {
		return "-" + out.String()
	}
	return out.String()
}
