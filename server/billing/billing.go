// Package billing drives the premium subscription through Stripe: checkout
// session creation on the way out, webhook events on the way in. Webhook
// signatures are verified before any state mutation.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/stridelog/stridelog/server/store"
)

var (
	// ErrInvalidSignature reports a webhook payload that failed signature
	// verification. Nothing is persisted for such a request.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrPersist reports a verified event whose premium-state effect could
	// not be stored. The processor should retry these.
	ErrPersist = errors.New("billing state not persisted")
)

// MaxWebhookPayloadSize caps inbound webhook bodies; Stripe events are small.
const MaxWebhookPayloadSize = 65536

func New(cfg Config, db store.Store) *Billing {
	stripe.Key = cfg.SecretKey

	return &Billing{
		cfg: cfg,
		db:  db,
	}
}

type Billing struct {
	cfg Config
	db  store.Store
}

func (b *Billing) Enabled() bool {
	return b.cfg.Enabled
}

// NewCheckoutURL creates a subscription checkout session for the user and
// returns the hosted payment page URL. The user id rides along as the client
// reference so the completion webhook can be attributed.
func (b *Billing) NewCheckoutURL(ctx context.Context, user store.User, successURL string, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(user.ID),
		CustomerEmail:     stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(b.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.URL, nil
}

// EventResult identifies a processed webhook event for logging.
type EventResult struct {
	EventID string
	Type    string
}

// HandleWebhook verifies the signature and applies the event to the premium
// state. An invalid signature fails with ErrInvalidSignature before any side
// effect; unknown event types are acknowledged and ignored.
func (b *Billing) HandleWebhook(ctx context.Context, payload []byte, signature string) (*EventResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, b.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	result := &EventResult{
		EventID: event.ID,
		Type:    string(event.Type),
	}

	switch event.Type {
	case "checkout.session.completed":
		err = b.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.deleted":
		err = b.handleSubscriptionDeleted(ctx, event)
	case "customer.subscription.updated":
		err = b.handleSubscriptionUpdated(ctx, event)
	default:
		slog.DebugContext(ctx, "ignoring unhandled billing event", slog.String("type", string(event.Type)))
		return result, nil
	}
	if err != nil {
		return result, err
	}

	return result, nil
}

func (b *Billing) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to decode checkout session: %w", err)
	}

	userID := sess.ClientReferenceID
	if userID == "" {
		return errors.New("checkout session has no client reference")
	}

	var customerID, subscriptionID string
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		subscriptionID = sess.Subscription.ID
	}

	if err := b.audit(ctx, event, customerID); err != nil {
		return err
	}

	if err := b.db.ActivatePremium(ctx, userID, customerID, subscriptionID, time.Now()); err != nil {
		return fmt.Errorf("%w: failed to activate premium for user %q: %w", ErrPersist, userID, err)
	}

	slog.InfoContext(ctx, "premium activated",
		slog.String("user_id", userID),
		slog.String("customer_id", customerID),
		slog.String("subscription_id", subscriptionID),
	)
	return nil
}

func (b *Billing) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	sub, err := decodeSubscription(event)
	if err != nil {
		return err
	}

	if err = b.audit(ctx, event, sub.customerID); err != nil {
		return err
	}

	if err = b.db.SetPremiumByCustomerID(ctx, sub.customerID, false); err != nil {
		return fmt.Errorf("%w: failed to deactivate premium for customer %q: %w", ErrPersist, sub.customerID, err)
	}

	slog.InfoContext(ctx, "premium cancelled", slog.String("customer_id", sub.customerID))
	return nil
}

func (b *Billing) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	sub, err := decodeSubscription(event)
	if err != nil {
		return err
	}

	if err = b.audit(ctx, event, sub.customerID); err != nil {
		return err
	}

	premium := sub.status == stripe.SubscriptionStatusActive || sub.status == stripe.SubscriptionStatusTrialing
	if err = b.db.SetPremiumByCustomerID(ctx, sub.customerID, premium); err != nil {
		return fmt.Errorf("%w: failed to update premium for customer %q: %w", ErrPersist, sub.customerID, err)
	}

	slog.InfoContext(ctx, "premium updated",
		slog.String("customer_id", sub.customerID),
		slog.String("status", string(sub.status)),
		slog.Bool("premium", premium),
	)
	return nil
}

type subscriptionEvent struct {
	customerID string
	status     stripe.SubscriptionStatus
}

func decodeSubscription(event stripe.Event) (subscriptionEvent, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return subscriptionEvent{}, fmt.Errorf("failed to decode subscription: %w", err)
	}

	var customerID string
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}
	if customerID == "" {
		return subscriptionEvent{}, errors.New("subscription event has no customer")
	}

	return subscriptionEvent{
		customerID: customerID,
		status:     sub.Status,
	}, nil
}

func (b *Billing) audit(ctx context.Context, event stripe.Event, customerID string) error {
	err := b.db.InsertBillingEvent(ctx, store.BillingEvent{
		ID:         eventID(event),
		Type:       string(event.Type),
		CustomerID: customerID,
		Raw:        json.RawMessage(event.Data.Raw),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to record billing event: %w", ErrPersist, err)
	}
	return nil
}

func eventID(event stripe.Event) string {
	if event.ID != "" {
		return event.ID
	}
	return uuid.NewString()
}
