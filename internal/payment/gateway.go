package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type GatewayConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Gateway talks to a Paystack-style REST payment API.
type Gateway struct {
	cfg    GatewayConfig
	client *http.Client
}

func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type initializeRequest struct {
	Reference   string `json:"reference"`
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

func (g *Gateway) InitializeCheckout(ctx context.Context, req CheckoutRequest) (string, error) {
	const op = "payment.Gateway.InitializeCheckout"

	var out initializeResponse
	err := g.post(ctx, "/transaction/initialize", initializeRequest{
		Reference:   req.Reference,
		Email:       req.Email,
		Amount:      req.Amount,
		Currency:    req.Currency,
		CallbackURL: req.CallbackURL,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	if !out.Status || out.Data.AuthorizationURL == "" {
		return "", fmt.Errorf("%s: gateway rejected checkout: %s", op, out.Message)
	}

	return out.Data.AuthorizationURL, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	} `json:"data"`
}

// VerifyTransaction fetches the charge by reference. paid is true only when
// the processor reports the charge as successful; amount is what was
// actually collected, in minor units.
func (g *Gateway) VerifyTransaction(ctx context.Context, reference string) (bool, int64, error) {
	const op = "payment.Gateway.VerifyTransaction"

	var out verifyResponse
	if err := g.get(ctx, "/transaction/verify/"+url.PathEscape(reference), &out); err != nil {
		return false, 0, fmt.Errorf("%s:%w", op, err)
	}

	if !out.Status {
		return false, 0, fmt.Errorf("%s: gateway rejected lookup: %s", op, out.Message)
	}

	return out.Data.Status == "success", out.Data.Amount, nil
}

type transferRequest struct {
	Reference     string `json:"reference"`
	Amount        int64  `json:"amount"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	Narration     string `json:"narration,omitempty"`
}

type transferResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func (g *Gateway) Transfer(ctx context.Context, req TransferRequest) error {
	const op = "payment.Gateway.Transfer"

	var out transferResponse
	err := g.post(ctx, "/transfer", transferRequest{
		Reference:     req.Reference,
		Amount:        req.Amount,
		BankCode:      req.BankCode,
		AccountNumber: req.AccountNumber,
		Narration:     req.Narration,
	}, &out)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if !out.Status {
		return fmt.Errorf("%s: gateway rejected transfer: %s", op, out.Message)
	}

	return nil
}

func (g *Gateway) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, out)
}

func (g *Gateway) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}

	return g.do(req, out)
}

func (g *Gateway) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
