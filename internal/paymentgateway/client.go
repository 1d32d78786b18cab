package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"

	paymentgatewaytypes "github.com/canermastan/hotel-operations/internal/core/datamodel/paymentgateway"
)

// Client is the synchronous payment gateway connector. Calls are bounded by
// the configured timeout; a declined charge comes back as a Result, a broken
// provider comes back as an error.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Charge(ctx context.Context, req *paymentgatewaytypes.ChargeRequest) (*paymentgatewaytypes.Result, error) {
	if err := req.Validate(); err != nil {
		c.logger.Error("charge request validation failed", "error", err)
		return nil, fmt.Errorf("validation error: %w", err)
	}

	c.logger.Info("sending charge request",
		"reference_id", req.ReferenceID,
		"amount_cents", req.AmountCents,
		"method", req.Method)

	if c.baseURL == "" {
		return c.simulateCharge(ctx, req)
	}

	return c.post(ctx, "/v1/charges", req)
}

func (c *Client) Refund(ctx context.Context, req *paymentgatewaytypes.RefundRequest) (*paymentgatewaytypes.Result, error) {
	if err := req.Validate(); err != nil {
		c.logger.Error("refund request validation failed", "error", err)
		return nil, fmt.Errorf("validation error: %w", err)
	}

	c.logger.Info("sending refund request",
		"original_transaction_id", req.OriginalTransactionID,
		"amount_cents", req.AmountCents)

	if c.baseURL == "" {
		return c.simulateRefund(ctx, req)
	}

	return c.post(ctx, "/v1/refunds", req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*paymentgatewaytypes.Result, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("response read error: %w", err)
	}

	// 402 carries a structured decline, not a transport failure.
	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusPaymentRequired {
		c.logger.Error("gateway returned error",
			"status", resp.StatusCode,
			"response", string(respBody))
		return nil, fmt.Errorf("gateway error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	var result paymentgatewaytypes.Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("response unmarshal error: %w", err)
	}

	return &result, nil
}

// simulateCharge stands in for the provider when no gateway URL is
// configured. Roughly one in ten charges declines.
func (c *Client) simulateCharge(ctx context.Context, req *paymentgatewaytypes.ChargeRequest) (*paymentgatewaytypes.Result, error) {
	select {
	case <-time.After(time.Second):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if rand.Float32() < 0.9 {
		result := &paymentgatewaytypes.Result{
			TransactionID: uuid.New().String(),
		}
		c.logger.Info("gateway simulation: charge approved",
			"reference_id", req.ReferenceID,
			"transaction_id", result.TransactionID)
		return result, nil
	}

	c.logger.Info("gateway simulation: charge declined",
		"reference_id", req.ReferenceID)
	return &paymentgatewaytypes.Result{
		Declined:      true,
		DeclineReason: "Insufficient funds",
	}, nil
}

func (c *Client) simulateRefund(ctx context.Context, req *paymentgatewaytypes.RefundRequest) (*paymentgatewaytypes.Result, error) {
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if rand.Float32() < 0.95 {
		result := &paymentgatewaytypes.Result{
			TransactionID: uuid.New().String(),
		}
		c.logger.Info("gateway simulation: refund approved",
			"original_transaction_id", req.OriginalTransactionID,
			"transaction_id", result.TransactionID)
		return result, nil
	}

	c.logger.Info("gateway simulation: refund declined",
		"original_transaction_id", req.OriginalTransactionID)
	return &paymentgatewaytypes.Result{
		Declined:      true,
		DeclineReason: "Refund rejected by processor",
	}, nil
}
