package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theazran/tagihYT/model"
)

func TestMap(t *testing.T) {
	cases := []struct {
		native string
		fraud  string
		want   string
	}{
		{"capture", "challenge", model.StatusChallenge},
		{"capture", "accept", model.StatusSuccess},
		{"capture", "", model.StatusPending},
		{"capture", "something-new", model.StatusPending},
		{"settlement", "", model.StatusSuccess},
		{"settlement", "challenge", model.StatusSuccess},
		{"deny", "", model.StatusFailed},
		{"cancel", "", model.StatusFailed},
		{"expire", "", model.StatusFailed},
		{"pending", "", model.StatusPending},
		{"", "", model.StatusPending},
		{"refund", "", model.StatusPending},
		{"authorize", "accept", model.StatusPending},
	}

	for _, tc := range cases {
		got := Map(tc.native, tc.fraud)
		assert.Equal(t, tc.want, got, "Map(%q, %q)", tc.native, tc.fraud)
	}
}

func TestMapDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, model.StatusSuccess, Map("settlement", ""))
		assert.Equal(t, model.StatusChallenge, Map("capture", "challenge"))
	}
}
