package model

import "time"

// Canonical transaction statuses. A transaction starts PENDING and only
// moves forward; SUCCESS and FAILED are terminal.
const (
	StatusPending   = "PENDING"
	StatusSuccess   = "SUCCESS"
	StatusFailed    = "FAILED"
	StatusChallenge = "CHALLENGE"
)

const (
	GatewayMidtrans = "MIDTRANS"
	GatewayKlikQRIS = "KLIKQRIS"
)

type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OrderID   string    `gorm:"uniqueIndex" json:"order_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Amount    int64     `json:"amount"` // minor units, gateway-confirmed total
	Month     string    `json:"month"`
	Status    string    `gorm:"default:PENDING" json:"status"`
	Gateway   string    `json:"gateway"`
	Token     string    `json:"token,omitempty"`     // Midtrans Snap token
	Signature string    `json:"signature,omitempty"` // KlikQRIS signature
	QrisURL   string    `json:"qris_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsTerminal(status string) bool {
	return status == StatusSuccess || status == StatusFailed
}

// SuccessStatuses is the set counted by the monthly summary. The legacy
// gateway-native values stayed in the set because old rows were written
// before statuses were normalized.
func SuccessStatuses() []string {
	return []string{StatusSuccess, "settlement", "capture"}
}
