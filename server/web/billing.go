package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/server/auth"
	"github.com/stridelog/stridelog/server/billing"
	"github.com/stridelog/stridelog/server/store"
)

type BillingVars struct {
	User    store.User
	Enabled bool
}

func (h *handler) Billing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if err := h.Templates().ExecuteTemplate(w, "billing.gohtml", BillingVars{
		User:    session.User,
		Enabled: h.Server.Billing.Enabled(),
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to render billing template", slog.Any("err", err))
	}
}

func (h *handler) BillingCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	if !h.Server.Billing.Enabled() {
		http.Error(w, "Billing is not enabled", http.StatusNotFound)
		return
	}
	if session.User.Premium {
		http.Redirect(w, r, "/billing", http.StatusFound)
		return
	}

	checkoutURL, err := h.Server.Billing.NewCheckoutURL(ctx, session.User,
		h.Cfg.Server.PublicURL+"/billing/success",
		h.Cfg.Server.PublicURL+"/billing",
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create checkout session", slog.Any("err", err))
		http.Error(w, "Failed to start checkout", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
}

func (h *handler) BillingSuccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := auth.GetSession(r)

	// Premium flips when the completion webhook lands, which may be a moment
	// after the redirect.
	if err := h.Templates().ExecuteTemplate(w, "billing_success.gohtml", BillingVars{
		User:    session.User,
		Enabled: h.Server.Billing.Enabled(),
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to render billing success template", slog.Any("err", err))
	}
}

// BillingWebhook receives payment processor events. A bad signature is
// rejected with 401 before anything is stored. After verification, malformed
// payloads answer 200 so the processor does not retry forever, but a failure
// to persist the premium state answers 500 to get the event redelivered.
func (h *handler) BillingWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, billing.MaxWebhookPayloadSize))
	if err != nil {
		slog.ErrorContext(ctx, "failed to read webhook payload", slog.Any("err", err))
		http.Error(w, "Failed to read payload", http.StatusBadRequest)
		return
	}

	result, err := h.Server.Billing.HandleWebhook(ctx, payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			slog.WarnContext(ctx, "rejected webhook with invalid signature", slog.Any("err", err))
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		slog.ErrorContext(ctx, "failed to process billing event",
			slog.String("event_id", result.EventID),
			slog.String("type", result.Type),
			slog.Any("err", err),
		)
		if errors.Is(err, billing.ErrPersist) {
			http.Error(w, "Failed to process event", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	slog.InfoContext(ctx, "processed billing event",
		slog.String("event_id", result.EventID),
		slog.String("type", result.Type),
	)
	w.WriteHeader(http.StatusOK)
}
