package fio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/fio-node/internal/domain"
)

// DefaultBaseURL is the production REST endpoint of the bank API.
const DefaultBaseURL = "https://fioapi.fio.cz/v1/rest"

const (
	opBalance      = "failed to get balance"
	opTransactions = "failed to get transactions"
	opPayment      = "payment creation failed"

	// responses larger than this are not a statement or import answer
	maxResponseBytes = 32 << 20
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the bank API on behalf of one account token.
type Client struct {
	token   string
	baseURL string
	http    Doer
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the transport used for every call.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.http = d
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Client for the given API token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PeriodsPath is the statement path for the inclusive range from..to.
func PeriodsPath(token string, from, to civil.Date) string {
	return fmt.Sprintf("/periods/%s/%s/%s/transactions.json", url.PathEscape(token), from, to)
}

// GetBalance returns the account balance as reported for the single day.
func (c *Client) GetBalance(ctx context.Context, day civil.Date) (*domain.Balance, error) {
	body, err := c.get(ctx, opBalance, PeriodsPath(c.token, day, day))
	if err != nil {
		return nil, err
	}
	balance, err := ExtractBalance(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opBalance, err)
	}
	return balance, nil
}

// GetTransactions returns the account movements between from and to, inclusive.
func (c *Client) GetTransactions(ctx context.Context, from, to civil.Date) ([]domain.Transaction, error) {
	body, err := c.get(ctx, opTransactions, PeriodsPath(c.token, from, to))
	if err != nil {
		return nil, err
	}
	txs, err := MapTransactions(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opTransactions, err)
	}
	return txs, nil
}

// SubmitPayment imports a validated order. Nothing is sent when encoding fails.
func (c *Client) SubmitPayment(ctx context.Context, order *domain.PaymentOrder) (*domain.PaymentResult, error) {
	payload, err := EncodePayment(order, c.token)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/import/", bytes.NewReader(payload.Body))
	if err != nil {
		return nil, &TransportError{Op: opPayment, Err: err}
	}
	req.Header.Set("Content-Type", payload.ContentType())

	body, err := c.do(req, "/import/")
	if err != nil {
		return nil, &TransportError{Op: opPayment, Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &TransportError{Op: opPayment, Err: errors.New("empty response from bank API")}
	}

	result := ParsePaymentResponse(string(body))
	c.log.Info().
		Str("status", result.Status).
		Str("error_code", result.ErrorCode).
		Str("id_instruction", result.IDInstruction).
		Msg("Payment import answered")
	return &result, nil
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, c.maskToken(path))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return body, nil
}

// do executes req and returns the body of a 2xx response. logPath is the
// path as it may appear in logs.
func (c *Client) do(req *http.Request, logPath string) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = c.scrub(err)
		c.log.Error().Err(err).Str("method", req.Method).Str("path", logPath).Msg("Bank API request failed")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", logPath).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Bank API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(body))
	}
	return body, nil
}

func (c *Client) maskToken(path string) string {
	if c.token == "" {
		return path
	}
	return strings.ReplaceAll(path, url.PathEscape(c.token), "***")
}

// scrub removes the token from transport errors, which quote the request URL.
func (c *Client) scrub(err error) error {
	var urlErr *url.Error
	if c.token != "" && errors.As(err, &urlErr) {
		urlErr.URL = c.maskToken(urlErr.URL)
	}
	return err
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
