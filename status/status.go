// Package status maps gateway-native transaction statuses onto the
// canonical set in model. The mapping is total: anything unrecognized is
// treated as PENDING so a transient or unknown gateway response can never
// fail a transaction on its own.
package status

import "github.com/theazran/tagihYT/model"

func Map(native, fraud string) string {
	switch native {
	case "capture":
		switch fraud {
		case "challenge":
			return model.StatusChallenge
		case "accept":
			return model.StatusSuccess
		}
		return model.StatusPending
	case "settlement":
		return model.StatusSuccess
	case "deny", "cancel", "expire":
		return model.StatusFailed
	case "pending":
		return model.StatusPending
	default:
		return model.StatusPending
	}
}
