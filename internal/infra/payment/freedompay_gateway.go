package payment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"tapzar-billing/internal/config"
	"tapzar-billing/internal/domain"
	"tapzar-billing/internal/domain/ports/adapter"
)

// FreedomPayGateway implements adapter.PaymentGateway over the PayBox-style
// form-POST protocol of FreedomPay.
type FreedomPayGateway struct {
	cfg    config.GatewayConfig
	client *http.Client
	parser ResponseParser
	log    *zerolog.Logger
}

var _ adapter.PaymentGateway = (*FreedomPayGateway)(nil)

// NewFreedomPayGateway creates a gateway client. The HTTP client carries the
// configured timeout so a hung gateway cannot pin a request goroutine.
func NewFreedomPayGateway(cfg config.GatewayConfig, parser ResponseParser, logger *zerolog.Logger) *FreedomPayGateway {
	if parser == nil {
		parser = PayboxXMLParser{}
	}
	return &FreedomPayGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		parser: parser,
		log:    logger,
	}
}

func (g *FreedomPayGateway) Name() string { return "freedompay" }

// Initiate signs and sends an init_payment request. It never retries; a fresh
// order id per attempt keeps retried initiations distinct on the gateway side.
func (g *FreedomPayGateway) Initiate(ctx context.Context, orderID string, amount int64, description, clientIP string) (*adapter.InitResult, error) {
	params := map[string]string{
		"pg_merchant_id":  g.cfg.MerchantID,
		"pg_order_id":     orderID,
		"pg_amount":       strconv.FormatInt(amount, 10),
		"pg_description":  description,
		"pg_currency":     g.cfg.Currency,
		"pg_language":     g.cfg.Language,
		"pg_salt":         ulid.Make().String(),
		"pg_testing_mode": boolFlag(g.cfg.Sandbox()),
	}
	if g.cfg.ResultURL != "" {
		params["pg_result_url"] = g.cfg.ResultURL
	}
	if clientIP != "" {
		params["pg_user_ip"] = clientIP
	}
	params[SigField] = Sign(g.cfg.ScriptName, params, g.cfg.SecretKey)

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build init request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrGatewayUnavailable, err)
	}

	parsed, err := g.parser.ParseInit(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if !parsed.OK {
		// Raw gateway error codes are for the logs, never for end users.
		g.log.Warn().
			Str("order_id", orderID).
			Str("error_code", parsed.ErrorCode).
			Str("error_description", parsed.ErrorDescription).
			Msg("gateway rejected init request")
		return nil, fmt.Errorf("%w: gateway error %s", domain.ErrGatewayUnavailable, parsed.ErrorCode)
	}
	if parsed.PaymentID == "" || parsed.RedirectURL == "" {
		return nil, fmt.Errorf("%w: init response missing payment id or redirect url", domain.ErrGatewayUnavailable)
	}

	return &adapter.InitResult{
		GatewayPaymentID: parsed.PaymentID,
		RedirectURL:      parsed.RedirectURL,
	}, nil
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
