package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ReplayEvent is posted to the configured webhook each time a queued
// transfer is successfully replayed to the remote system.
type ReplayEvent struct {
	Event     string    `json:"event"`
	LocalID   uint64    `json:"localId"`
	Nominal   string    `json:"nominal"`
	Recipient string    `json:"recipient"`
	Timestamp time.Time `json:"timestamp"`
}

// SendWebhook posts the JSON payload to the subscriber's URL. Best effort;
// the caller only logs failures.
func SendWebhook(url string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "BankTech-Client/1.0")

	// Timeout so a slow subscriber cannot stall a sync pass.
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook subscriber returned error: %d", resp.StatusCode)
}
