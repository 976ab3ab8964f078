// Command test-webhook exercises the webhook endpoint of a running
// instance: it performs the subscription validation handshake and then
// posts simulated push notifications, the way Strava's servers would.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	defaultCount   = 1
	defaultTimeout = 10 * time.Second
	webhookPath    = "/api/strava/webhook"
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:8080", "Base URL of the running instance")
		subscriptionID = flag.Int64("subscription-id", 1, "Subscription id to send in notifications")
		count          = flag.Int("count", defaultCount, "Number of notifications to post")
		challenge      = flag.String("challenge", "15f7d1a91c1f40f8a748fd134752feb3", "hub.challenge value for the handshake")
		skipHandshake  = flag.Bool("skip-handshake", false, "Skip the validation handshake")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := &http.Client{Timeout: *timeout}
	endpoint := *baseURL + webhookPath

	if !*skipHandshake {
		if err := runHandshake(ctx, client, endpoint, *challenge); err != nil {
			os.Stderr.WriteString("handshake failed: " + err.Error() + "\n")
			os.Exit(1)
		}
		fmt.Println("handshake ok")
	}

	for i := 0; i < *count; i++ {
		if err := postNotification(ctx, client, endpoint, *subscriptionID); err != nil {
			os.Stderr.WriteString("notification failed: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	fmt.Printf("posted %d notification(s) to %s\n", *count, endpoint)
}

// runHandshake sends the validation GET and checks that the challenge is
// echoed back verbatim.
func runHandshake(ctx context.Context, client *http.Client, endpoint, challenge string) error {
	u := endpoint + "?" + url.Values{
		"hub.mode":         {"subscribe"},
		"hub.challenge":    {challenge},
		"hub.verify_token": {"HA_STRAVA"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var echo map[string]string
	if err := json.Unmarshal(body, &echo); err != nil {
		return fmt.Errorf("decode response %q: %w", body, err)
	}
	if echo["hub.challenge"] != challenge {
		return fmt.Errorf("challenge mismatch: sent %q, got %q", challenge, echo["hub.challenge"])
	}
	return nil
}

// postNotification sends one push notification shaped like Strava's
// webhook events.
func postNotification(ctx context.Context, client *http.Client, endpoint string, subscriptionID int64) error {
	payload, err := json.Marshal(map[string]any{
		"object_type":     "activity",
		"object_id":       time.Now().UnixNano(),
		"aspect_type":     "create",
		"owner_id":        134815,
		"subscription_id": subscriptionID,
		"event_time":      time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
