package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"tapzar-billing/internal/domain"
	"tapzar-billing/internal/domain/model"
)

type initiateRequest struct {
	Plan string `json:"plan"`
}

type initiateResponse struct {
	Status     string `json:"status"`
	PaymentID  string `json:"payment_id"`
	PaymentURL string `json:"payment_url"`
}

func (s *Server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := AuthedUser(ctx)

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if s.limiter != nil {
		if ok, err := s.limiter.AllowInitiate(ctx, userID); err == nil && !ok {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
	}

	p, payURL, err := s.paymentUC.Initiate(ctx, userID, model.Plan(req.Plan), clientIP(r))
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			// Raw gateway codes stay in the logs.
			s.log.Warn().Err(err).Str("user_id", userID).Msg("payment initiation rejected")
			http.Error(w, "Payment could not be initiated, please try again", http.StatusBadGateway)
			return
		}
		if errors.Is(err, domain.ErrInvalidArgument) {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		s.log.Error().Err(err).Str("user_id", userID).Msg("payment initiation failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, initiateResponse{
		Status:     "redirect",
		PaymentID:  deref(p.GatewayPaymentID),
		PaymentURL: payURL,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paymentID := r.URL.Query().Get("payment_id")
	if paymentID == "" {
		http.Error(w, "payment_id is required", http.StatusBadRequest)
		return
	}
	status, err := s.paymentUC.Status(ctx, AuthedUser(ctx), paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "payment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// handleWebhook receives the gateway's signed form-encoded result callback.
// The protocol ack body is returned for every authenticated callback; the
// gateway only needs to know we received and verified it.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	fields := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		fields[k] = r.PostForm.Get(k)
	}

	if s.limiter != nil {
		if ok, err := s.limiter.AllowWebhook(ctx, fields["pg_payment_id"]); err == nil && !ok {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
	}

	res, err := s.webhookUC.Process(ctx, fields)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSignatureInvalid):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid signature"})
		case errors.Is(err, domain.ErrUnknownPayment):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
		default:
			// Transaction already rolled back; nothing partial persisted.
			s.log.Error().Err(err).Msg("webhook processing failed")
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}

	s.log.Info().
		Str("outcome", string(res.Outcome)).
		Str("gateway_payment_id", fields["pg_payment_id"]).
		Msg("webhook processed")
	writeJSON(w, http.StatusOK, map[string]string{"pg_status": "ok"})
}

type simulateRequest struct {
	PaymentID string `json:"payment_id"`
	Success   *bool  `json:"success"`
}

// handleSimulate finalizes a pending payment without a signed callback.
// Sandbox environments only; it drives the exact ledger path the webhook uses.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PaymentID == "" {
		http.Error(w, "payment_id is required", http.StatusBadRequest)
		return
	}
	success := true
	if req.Success != nil {
		success = *req.Success
	}

	res, err := s.webhookUC.Simulate(ctx, req.PaymentID, success)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSimulationDisabled):
			http.Error(w, "simulation disabled", http.StatusForbidden)
		case errors.Is(err, domain.ErrUnknownPayment):
			http.Error(w, "payment not found", http.StatusNotFound)
		default:
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"outcome": string(res.Outcome),
	})
}

func (s *Server) handleCurrentSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sub, err := s.subUC.Current(ctx, AuthedUser(ctx))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "no subscription", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Plan      model.Plan `json:"plan"`
		IsActive  bool       `json:"is_active"`
		AutoRenew bool       `json:"auto_renew"`
		StartsAt  *string    `json:"starts_at"`
		ExpiresAt *string    `json:"expires_at"`
	}{
		Plan: sub.Plan,
		// Effective access at read time; an expired row reads inactive even
		// before anything rewrites the flag.
		IsActive:  sub.ActiveAt(time.Now()),
		AutoRenew: sub.AutoRenew,
		StartsAt:  fmtTime(sub.StartsAt),
		ExpiresAt: fmtTime(sub.ExpiresAt),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payments, err := s.paymentUC.History(ctx, AuthedUser(ctx), 50)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	type item struct {
		PaymentID string `json:"payment_id"`
		Plan      string `json:"plan"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Status    string `json:"status"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]item, 0, len(payments))
	for _, p := range payments {
		out = append(out, item{
			PaymentID: deref(p.GatewayPaymentID),
			Plan:      string(p.Plan),
			Amount:    p.Amount,
			Currency:  p.Currency,
			Status:    string(p.Status),
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []item `json:"data"`
	}{Data: out})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

func deref(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}

func fmtTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
