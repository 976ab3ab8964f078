package model

// Credentials is the client credential pair identifying the API
// application. The remote service keys webhook subscriptions on it.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Subscription mirrors one entry of the remote push-subscription list.
type Subscription struct {
	ID          int64  `json:"id"`
	CallbackURL string `json:"callback_url"`
}

// SubscriptionConfig is the locally persisted subscription state. The
// callback URL here must always equal the one registered remotely; any
// mismatch triggers reconciliation.
type SubscriptionConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	CallbackURL  string `json:"callback_url"`
	WebhookID    int64  `json:"webhook_id"`
}

// Creds returns the credential pair of the config.
func (c SubscriptionConfig) Creds() Credentials {
	return Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}
