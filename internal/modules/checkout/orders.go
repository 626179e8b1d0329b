package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// OrderClient submits completed carts to the external order API. Card orders
// go through the payment-processor endpoint, cash orders through the plain
// order endpoint. Each submission is a single attempt; failures surface as
// *RemoteError and are never retried.
type OrderClient struct {
	baseURL string
	client  *http.Client
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *OrderClient) SubmitCardOrder(ctx context.Context, items []OrderItem) error {
	return c.post(ctx, "/api/mercadopago/orders", items)
}

func (c *OrderClient) SubmitCashOrder(ctx context.Context, items []OrderItem) error {
	return c.post(ctx, "/api/orders", items)
}

func (c *OrderClient) post(ctx context.Context, path string, items []OrderItem) error {
	body, err := json.Marshal(orderRequest{
		Reference: uuid.NewString(),
		Items:     items,
	})
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &RemoteError{Messages: []string{err.Error()}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusMultipleChoices {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return remoteError(resp)
}

// remoteError decodes the provider failure payload. The payment processor
// may nest several errors under error.errors; a plain order failure carries
// a single message.
func remoteError(resp *http.Response) error {
	remote := &RemoteError{Status: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		for _, e := range payload.Error.Errors {
			if e.Message != "" {
				remote.Messages = append(remote.Messages, e.Message)
			}
		}
		if len(remote.Messages) == 0 && payload.Message != "" {
			remote.Messages = append(remote.Messages, payload.Message)
		}
	}
	if len(remote.Messages) == 0 {
		remote.Messages = append(remote.Messages,
			fmt.Sprintf("order API returned status %d", resp.StatusCode))
	}
	return remote
}
