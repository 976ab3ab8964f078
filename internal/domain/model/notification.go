package model

import (
	"encoding/json"
	"io"
)

// Notification is one inbound webhook push, discarded after the dispatch
// decision.
type Notification struct {
	// SubscriptionID is -1 when the body is malformed or omits the field.
	SubscriptionID int64
	// Host is the Host header of the inbound request.
	Host string
}

// DecodeNotification reads a notification body. Parse failures and a
// missing subscription_id both yield the -1 sentinel, never an error.
func DecodeNotification(r io.Reader, host string) Notification {
	n := Notification{SubscriptionID: -1, Host: host}

	var body struct {
		SubscriptionID *int64 `json:"subscription_id"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return n
	}
	if body.SubscriptionID != nil {
		n.SubscriptionID = *body.SubscriptionID
	}
	return n
}
