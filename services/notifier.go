package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notifier posts bill events to the external notification endpoint.
// Delivery is best-effort: callers log failures and move on.
type Notifier struct {
	url    string
	client *http.Client
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *Notifier) BillCalculated(ctx context.Context, productID, month string, amount, kwValue float64) error {
	if n.url == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"product_id": productID,
		"month":      month,
		"amount":     amount,
		"kw_value":   kwValue,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %s", resp.Status)
	}
	return nil
}
