package models

import "time"

// PaymentStatus tracks the gateway-side lifecycle of a booking's payment.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentReleased   PaymentStatus = "released"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentFailed     PaymentStatus = "failed"
)

// Coordinator operations recorded in the idempotency ledger.
const (
	OpAuthorize = "authorize"
	OpCapture   = "capture"
	OpRelease   = "release"
	OpRefund    = "refund"
)

// Payment is the 1:1 money record of a booking. It is mutated only through
// the escrow coordinator.
type Payment struct {
	ID        string  `bson:"id" json:"id"`
	BookingID string  `bson:"booking_id" json:"booking_id"`
	Amount    float64 `bson:"amount" json:"amount"`
	Currency  string  `bson:"currency" json:"currency"`

	GatewayRef string        `bson:"gateway_ref,omitempty" json:"gateway_ref,omitempty"` // gateway transaction/intent id
	Status     PaymentStatus `bson:"status" json:"status"`
	Escrow     bool          `bson:"escrow" json:"escrow"` // captured and held by the platform

	CapturedAmount   float64 `bson:"captured_amount" json:"captured_amount"`
	RefundedAmount   float64 `bson:"refunded_amount" json:"refunded_amount"`
	ReleasedAmount   float64 `bson:"released_amount" json:"released_amount"`
	CommissionAmount float64 `bson:"commission_amount" json:"commission_amount"`
	FailureReason    string  `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PaymentOperation is one entry of the per-booking operation ledger. The
// unique (booking_id, op) index makes every coordinator operation
// insert-once: a replayed operation finds the entry and skips the gateway.
type PaymentOperation struct {
	BookingID   string    `bson:"booking_id" json:"booking_id"`
	Op          string    `bson:"op" json:"op"`
	Key         string    `bson:"key" json:"key"` // idempotency key handed to the gateway
	GatewayRef  string    `bson:"gateway_ref,omitempty" json:"gateway_ref,omitempty"`
	Amount      float64   `bson:"amount" json:"amount"`
	SucceededAt time.Time `bson:"succeeded_at" json:"succeeded_at"`
}
