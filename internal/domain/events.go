package domain

const (
	EventPaymentSent     = "payment_sent"
	EventPaymentReceived = "payment_received"
	EventBalanceUpdate   = "balance_update"
	EventFraudAlert      = "fraud_alert"
	EventMoneyRequest    = "money_request"
)

// EventSink receives domain events and fans them out to connected clients.
// Publish is fire-and-forget: delivery failures never affect a committed
// transfer.
type EventSink interface {
	Publish(eventType string, userID string, payload map[string]any)
}
