package database

import (
	"context"
	"fmt"

	"github.com/stridelog/stridelog/internal/xpgtype"
	"github.com/stridelog/stridelog/server/store"
)

// InsertBillingEvent appends a verified webhook event to the billing audit
// log.
func (d *Database) InsertBillingEvent(ctx context.Context, event store.BillingEvent) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO billing_events (billing_event_id, billing_event_type, billing_event_customer_id, billing_event_raw)
		VALUES ($1, $2, $3, $4)
	`, event.ID, event.Type, event.CustomerID, xpgtype.NewJSON(event.Raw))
	if err != nil {
		return fmt.Errorf("failed to insert billing event: %w", err)
	}
	return nil
}
