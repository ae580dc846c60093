package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"

	"github.com/stridelog/stridelog/server/store"
)

const testWebhookSecret = "whsec_test"

type premiumChange struct {
	customerID string
	premium    bool
}

// fakeStore records billing mutations; everything else panics via the nil
// embedded interface, which is fine since billing never calls it.
type fakeStore struct {
	store.Store

	events      []store.BillingEvent
	activate    []string
	changes     []premiumChange
	insertErr   error
	activateErr error
}

func (f *fakeStore) InsertBillingEvent(_ context.Context, event store.BillingEvent) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) ActivatePremium(_ context.Context, userID string, customerID string, subscriptionID string, _ time.Time) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activate = append(f.activate, userID)
	return nil
}

func (f *fakeStore) SetPremiumByCustomerID(_ context.Context, customerID string, premium bool) error {
	f.changes = append(f.changes, premiumChange{customerID: customerID, premium: premium})
	return nil
}

func newTestBilling(db store.Store) *Billing {
	return New(Config{Enabled: true, WebhookSecret: testWebhookSecret}, db)
}

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType string, object string) []byte {
	return fmt.Appendf(nil, `{"id":"evt_test","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	db := &fakeStore{}
	b := newTestBilling(db)

	payload := eventPayload("checkout.session.completed", `{"client_reference_id":"u1"}`)

	_, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, "whsec_wrong"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, db.events)
	assert.Empty(t, db.activate)
	assert.Empty(t, db.changes)
}

func TestHandleWebhookCheckoutCompleted(t *testing.T) {
	db := &fakeStore{}
	b := newTestBilling(db)

	payload := eventPayload("checkout.session.completed",
		`{"client_reference_id":"u1","customer":"cus_1","subscription":"sub_1"}`)

	result, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_test", result.EventID)
	assert.Equal(t, "checkout.session.completed", result.Type)

	assert.Equal(t, []string{"u1"}, db.activate)
	require.Len(t, db.events, 1)
	assert.Equal(t, "evt_test", db.events[0].ID)
	assert.Equal(t, "cus_1", db.events[0].CustomerID)
}

func TestHandleWebhookReportsPersistFailure(t *testing.T) {
	db := &fakeStore{activateErr: errors.New("connection reset")}
	b := newTestBilling(db)

	payload := eventPayload("checkout.session.completed",
		`{"client_reference_id":"u1","customer":"cus_1"}`)

	_, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	assert.ErrorIs(t, err, ErrPersist)
}

func TestHandleWebhookReportsAuditFailure(t *testing.T) {
	db := &fakeStore{insertErr: errors.New("connection reset")}
	b := newTestBilling(db)

	payload := eventPayload("checkout.session.completed",
		`{"client_reference_id":"u1","customer":"cus_1"}`)

	// The audit row failing to land must surface as a retryable error, and
	// premium must not flip without the audit trail.
	_, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	assert.ErrorIs(t, err, ErrPersist)
	assert.Empty(t, db.activate)
}

func TestHandleWebhookCheckoutWithoutReference(t *testing.T) {
	db := &fakeStore{}
	b := newTestBilling(db)

	payload := eventPayload("checkout.session.completed", `{"customer":"cus_1"}`)

	_, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, db.activate)
}

func TestHandleWebhookSubscriptionDeleted(t *testing.T) {
	db := &fakeStore{}
	b := newTestBilling(db)

	payload := eventPayload("customer.subscription.deleted", `{"customer":"cus_1","status":"canceled"}`)

	_, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, []premiumChange{{customerID: "cus_1", premium: false}}, db.changes)
}

func TestHandleWebhookSubscriptionUpdated(t *testing.T) {
	tests := []struct {
		status  string
		premium bool
	}{
		{status: "active", premium: true},
		{status: "trialing", premium: true},
		{status: "past_due", premium: false},
		{status: "unpaid", premium: false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			db := &fakeStore{}
			b := newTestBilling(db)

			payload := eventPayload("customer.subscription.updated",
				fmt.Sprintf(`{"customer":"cus_1","status":%q}`, tt.status))

			_, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
			require.NoError(t, err)
			assert.Equal(t, []premiumChange{{customerID: "cus_1", premium: tt.premium}}, db.changes)
		})
	}
}

func TestHandleWebhookIgnoresUnknownEvents(t *testing.T) {
	db := &fakeStore{}
	b := newTestBilling(db)

	payload := eventPayload("invoice.paid", `{}`)

	result, err := b.HandleWebhook(context.Background(), payload, signPayload(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "invoice.paid", result.Type)
	assert.Empty(t, db.events)
	assert.Empty(t, db.changes)
}
