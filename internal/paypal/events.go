package paypal

// Webhook event types the billing flow reacts to. Everything else is
// acknowledged and dropped.
const (
	EventSubscriptionCreated   = "BILLING.SUBSCRIPTION.CREATED"
	EventSubscriptionActivated = "BILLING.SUBSCRIPTION.ACTIVATED"
	EventPaymentCompleted      = "BILLING.SUBSCRIPTION.PAYMENT.COMPLETED"
	EventSubscriptionCancelled = "BILLING.SUBSCRIPTION.CANCELLED"
	EventSubscriptionSuspended = "BILLING.SUBSCRIPTION.SUSPENDED"
)

// WebhookEvent is the envelope PayPal posts to the webhook endpoint.
type WebhookEvent struct {
	ID        string   `json:"id"`
	EventType string   `json:"event_type"`
	Resource  Resource `json:"resource"`
}

// Resource is the subscription object inside a billing event. CustomID is
// set at checkout and carries our user ID.
type Resource struct {
	ID          string       `json:"id"`
	CustomID    string       `json:"custom_id"`
	Status      string       `json:"status"`
	BillingInfo *BillingInfo `json:"billing_info,omitempty"`
}

// BillingInfo carries the renewal schedule.
type BillingInfo struct {
	NextBillingTime string `json:"next_billing_time"` // RFC 3339
}
