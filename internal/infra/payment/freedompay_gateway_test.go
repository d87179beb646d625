//go:build !integration

package payment_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"tapzar-billing/internal/config"
	"tapzar-billing/internal/domain"
	"tapzar-billing/internal/infra/payment"

	"github.com/rs/zerolog"
)

const gatewaySecret = "gw-secret"

func gatewayConfig(apiURL, environment string) config.GatewayConfig {
	return config.GatewayConfig{
		MerchantID:  "500001",
		SecretKey:   gatewaySecret,
		APIURL:      apiURL,
		ScriptName:  "init_payment.php",
		ResultURL:   "https://billing.example/api/v1/payments/webhook",
		Currency:    "KGS",
		Language:    "ru",
		Environment: environment,
		Timeout:     5 * time.Second,
	}
}

func newGateway(cfg config.GatewayConfig) *payment.FreedomPayGateway {
	logger := zerolog.Nop()
	return payment.NewFreedomPayGateway(cfg, nil, &logger)
}

const okInitXML = `<?xml version="1.0" encoding="utf-8"?>
<response>
	<pg_status>ok</pg_status>
	<pg_payment_id>845003</pg_payment_id>
	<pg_redirect_url>https://pay.freedompay.kg/pay.html?customer=845003</pg_redirect_url>
</response>`

func TestFreedomPayGateway_Initiate(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a correctly signed form and returns the redirect", func(t *testing.T) {
		// Arrange
		var posted url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			posted = r.PostForm
			w.Write([]byte(okInitXML))
		}))
		defer srv.Close()
		gw := newGateway(gatewayConfig(srv.URL, config.EnvSandbox))

		// Act
		res, err := gw.Initiate(ctx, "u1-popular-ORDER", 15, "Plan popular", "203.0.113.7")

		// Assert
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if res.GatewayPaymentID != "845003" {
			t.Errorf("expected payment id 845003, got %q", res.GatewayPaymentID)
		}
		if res.RedirectURL != "https://pay.freedompay.kg/pay.html?customer=845003" {
			t.Errorf("unexpected redirect url %q", res.RedirectURL)
		}

		want := map[string]string{
			"pg_merchant_id":  "500001",
			"pg_order_id":     "u1-popular-ORDER",
			"pg_amount":       "15",
			"pg_currency":     "KGS",
			"pg_language":     "ru",
			"pg_testing_mode": "1",
			"pg_user_ip":      "203.0.113.7",
		}
		for k, v := range want {
			if got := posted.Get(k); got != v {
				t.Errorf("field %s: expected %q, got %q", k, v, got)
			}
		}
		if posted.Get("pg_salt") == "" {
			t.Error("expected a salt")
		}

		// The posted signature must recompute from the posted fields.
		fields := make(map[string]string, len(posted))
		for k := range posted {
			fields[k] = posted.Get(k)
		}
		if !payment.Verify("init_payment.php", fields, gatewaySecret, posted.Get(payment.SigField)) {
			t.Error("posted signature does not verify")
		}
	})

	t.Run("production disables testing mode", func(t *testing.T) {
		var testingMode string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			testingMode = r.PostForm.Get("pg_testing_mode")
			w.Write([]byte(okInitXML))
		}))
		defer srv.Close()
		gw := newGateway(gatewayConfig(srv.URL, config.EnvProduction))

		if _, err := gw.Initiate(ctx, "order", 10, "Plan basic", ""); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if testingMode != "0" {
			t.Errorf("expected pg_testing_mode=0, got %q", testingMode)
		}
	})

	t.Run("fresh salt per attempt", func(t *testing.T) {
		var salts []string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			salts = append(salts, r.PostForm.Get("pg_salt"))
			w.Write([]byte(okInitXML))
		}))
		defer srv.Close()
		gw := newGateway(gatewayConfig(srv.URL, config.EnvSandbox))

		for i := 0; i < 2; i++ {
			if _, err := gw.Initiate(ctx, "order", 10, "Plan basic", ""); err != nil {
				t.Fatalf("initiate %d: %v", i, err)
			}
		}
		if len(salts) != 2 || salts[0] == salts[1] {
			t.Errorf("expected two distinct salts, got %v", salts)
		}
	})

	t.Run("gateway error response maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<response>
				<pg_status>error</pg_status>
				<pg_error_code>101</pg_error_code>
				<pg_error_description>Incorrect merchant</pg_error_description>
			</response>`))
		}))
		defer srv.Close()
		gw := newGateway(gatewayConfig(srv.URL, config.EnvSandbox))

		_, err := gw.Initiate(ctx, "order", 10, "Plan basic", "")
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})

	t.Run("malformed body maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>definitely not the protocol</html>"))
		}))
		defer srv.Close()
		gw := newGateway(gatewayConfig(srv.URL, config.EnvSandbox))

		if _, err := gw.Initiate(ctx, "order", 10, "Plan basic", ""); !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})

	t.Run("ok status without a redirect maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<response><pg_status>ok</pg_status></response>`))
		}))
		defer srv.Close()
		gw := newGateway(gatewayConfig(srv.URL, config.EnvSandbox))

		if _, err := gw.Initiate(ctx, "order", 10, "Plan basic", ""); !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})

	t.Run("unreachable endpoint maps to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // shut down before the call
		gw := newGateway(gatewayConfig(srv.URL, config.EnvSandbox))

		if _, err := gw.Initiate(ctx, "order", 10, "Plan basic", ""); !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
	})
}

func TestPayboxXMLParser(t *testing.T) {
	p := payment.PayboxXMLParser{}

	t.Run("success body", func(t *testing.T) {
		res, err := p.ParseInit([]byte(okInitXML))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !res.OK || res.PaymentID != "845003" {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("error body carries code and description", func(t *testing.T) {
		res, err := p.ParseInit([]byte(`<response><pg_status>error</pg_status><pg_error_code>340</pg_error_code><pg_error_description>limit</pg_error_description></response>`))
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if res.OK || res.ErrorCode != "340" || res.ErrorDescription != "limit" {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("garbage is an error", func(t *testing.T) {
		if _, err := p.ParseInit([]byte("not xml at all")); err == nil {
			t.Fatal("expected a parse error")
		}
	})
}
