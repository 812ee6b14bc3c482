package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"081234567890", "6281234567890@s.whatsapp.net"},
		{"0812-3456-7890", "6281234567890@s.whatsapp.net"},
		{"+62 812 3456 7890", "6281234567890@s.whatsapp.net"},
		{"6281234567890", "6281234567890@s.whatsapp.net"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatPhone(tc.in), "FormatPhone(%q)", tc.in)
	}
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "0", FormatRupiah(0))
	assert.Equal(t, "500", FormatRupiah(500))
	assert.Equal(t, "50.000", FormatRupiah(50000))
	assert.Equal(t, "159.000", FormatRupiah(159000))
	assert.Equal(t, "1.250.000", FormatRupiah(1250000))
}

func TestPaymentReceivedMessage(t *testing.T) {
	msg := PaymentReceivedMessage("Budi", 50000, "2026-02")
	assert.Contains(t, msg, "Budi")
	assert.Contains(t, msg, "Rp 50.000")
	assert.Contains(t, msg, "2026-02")
}

func TestSend(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(r.Context())
		w.WriteHeader(200)
	}))
	defer srv.Close()

	w := NewWhatsApp(srv.URL, "patrolwaa1")
	err := w.Send(context.Background(), "081234567890", "halo dunia")
	require.NoError(t, err)

	require.NotNil(t, got)
	q := got.URL.Query()
	assert.Equal(t, "patrolwaa1", q.Get("userId"))
	assert.Equal(t, "6281234567890@s.whatsapp.net", q.Get("to"))
	assert.Equal(t, "halo dunia", q.Get("message"))
}

func TestSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	w := NewWhatsApp(srv.URL, "patrolwaa1")
	err := w.Send(context.Background(), "0812", "halo")
	assert.Error(t, err)
}

func TestSendEmptyPhoneIsNoop(t *testing.T) {
	w := NewWhatsApp("http://127.0.0.1:1", "patrolwaa1")
	assert.NoError(t, w.Send(context.Background(), "", "halo"))
}
