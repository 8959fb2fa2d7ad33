package midtrans

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/metrics"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/model"
)

// Config holds the gateway connection settings.
type Config struct {
	ServerKey   string
	SnapBaseURL string
	CoreBaseURL string
	Timeout     time.Duration
}

// Client is a stateless transport adapter for the Midtrans Snap/Core API.
// Every call is a remote round-trip with a bounded timeout; nothing is cached
// or persisted here.
type Client struct {
	http      *resty.Client
	breaker   *gobreaker.CircuitBreaker
	serverKey string
	snapBase  string
	coreBase  string
}

func NewClient(cfg Config) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.ServerKey, "").
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "midtrans",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Gateway circuit breaker state changed")
		},
	})

	return &Client{
		http:      httpClient,
		breaker:   breaker,
		serverKey: cfg.ServerKey,
		snapBase:  strings.TrimRight(cfg.SnapBaseURL, "/"),
		coreBase:  strings.TrimRight(cfg.CoreBaseURL, "/"),
	}
}

// CustomerDetails mirrors the gateway's customer_details object.
type CustomerDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ItemDetails mirrors the gateway's item_details entries.
type ItemDetails struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// ChargeParams is the input for creating a Snap transaction.
type ChargeParams struct {
	OrderID       string
	GrossAmount   int64
	Customer      CustomerDetails
	Items         []ItemDetails
	ExpiryMinutes int
}

// SnapResponse is what the checkout flow needs: a Snap token and the hosted
// payment page URL.
type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// StatusResponse is the gateway's view of a transaction, returned by the
// status endpoint and echoed in webhook notifications.
type StatusResponse struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	GrossAmount       string `json:"gross_amount"`
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	SettlementTime    string `json:"settlement_time,omitempty"`
}

type snapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	ItemDetails     []ItemDetails   `json:"item_details"`
	Expiry          *snapExpiry     `json:"expiry,omitempty"`
}

type snapExpiry struct {
	Unit     string `json:"unit"`
	Duration int    `json:"duration"`
}

type snapError struct {
	ErrorMessages []string `json:"error_messages"`
}

type apiResponse struct {
	StatusCode    string `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// CreateTransaction registers a transaction with Snap and returns the token
// and redirect URL for checkout.
func (c *Client) CreateTransaction(ctx context.Context, p *ChargeParams) (*SnapResponse, error) {
	body := snapRequest{
		CustomerDetails: p.Customer,
		ItemDetails:     p.Items,
	}
	body.TransactionDetails.OrderID = p.OrderID
	body.TransactionDetails.GrossAmount = p.GrossAmount
	if p.ExpiryMinutes > 0 {
		body.Expiry = &snapExpiry{Unit: "minute", Duration: p.ExpiryMinutes}
	}

	var out SnapResponse
	var apiErr snapError

	resp, err := c.execute(ctx, "charge", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(body).SetResult(&out).SetError(&apiErr).
			Post(c.snapBase + "/snap/v1/transactions")
	})
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &model.GatewayError{
			Op:      "charge",
			Status:  resp.StatusCode(),
			Message: strings.Join(apiErr.ErrorMessages, ", "),
		}
	}
	return &out, nil
}

// QueryStatus fetches the gateway's current view of a transaction.
func (c *Client) QueryStatus(ctx context.Context, orderID string) (*StatusResponse, error) {
	var out StatusResponse

	resp, err := c.execute(ctx, "status", func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&out).
			Get(fmt.Sprintf("%s/v2/%s/status", c.coreBase, orderID))
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 404 || out.StatusCode == "404" {
		return nil, &model.NotFoundError{Resource: "gateway transaction", Key: orderID}
	}
	if resp.IsError() {
		return nil, &model.GatewayError{Op: "status", Status: resp.StatusCode(), Message: out.StatusMessage}
	}
	return &out, nil
}

// Cancel voids a transaction the gateway still considers cancelable.
func (c *Client) Cancel(ctx context.Context, orderID string) error {
	var out apiResponse

	resp, err := c.execute(ctx, "cancel", func(req *resty.Request) (*resty.Response, error) {
		return req.SetResult(&out).
			Post(fmt.Sprintf("%s/v2/%s/cancel", c.coreBase, orderID))
	})
	if err != nil {
		return err
	}
	if resp.StatusCode() == 404 {
		return &model.NotFoundError{Resource: "gateway transaction", Key: orderID}
	}
	if resp.IsError() {
		return &model.GatewayError{Op: "cancel", Status: resp.StatusCode(), Message: out.StatusMessage}
	}
	return nil
}

// Refund refunds a settled transaction. amount == 0 requests a full refund.
func (c *Client) Refund(ctx context.Context, orderID string, amount int64, reason string) error {
	body := map[string]interface{}{}
	if amount > 0 {
		body["amount"] = amount
	}
	if reason != "" {
		body["reason"] = reason
	}

	var out apiResponse

	resp, err := c.execute(ctx, "refund", func(req *resty.Request) (*resty.Response, error) {
		return req.SetBody(body).SetResult(&out).
			Post(fmt.Sprintf("%s/v2/%s/refund", c.coreBase, orderID))
	})
	if err != nil {
		return err
	}
	if resp.StatusCode() == 404 {
		return &model.NotFoundError{Resource: "gateway transaction", Key: orderID}
	}
	if resp.IsError() {
		return &model.GatewayError{Op: "refund", Status: resp.StatusCode(), Message: out.StatusMessage}
	}
	return nil
}

// execute runs one HTTP call through the circuit breaker. Only transport
// failures count against the breaker; HTTP-level rejections are returned to
// the caller as-is.
func (c *Client) execute(ctx context.Context, op string, call func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return call(c.http.R().SetContext(ctx))
	})
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(op, "error").Inc()
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &model.GatewayError{Op: op, Message: "gateway circuit open"}
		}
		return nil, &model.GatewayError{Op: op, Message: err.Error()}
	}

	resp := res.(*resty.Response)
	if resp.IsError() {
		metrics.GatewayRequests.WithLabelValues(op, "rejected").Inc()
	} else {
		metrics.GatewayRequests.WithLabelValues(op, "ok").Inc()
	}
	return resp, nil
}
