package payment

import "context"

// Result is the gateway's reference for a completed call.
type Result struct {
	Ref string // gateway transaction id (intent, refund or transfer id)
}

// AuthorizeRequest describes a hold placed on the tourist's card at booking
// creation. The hold is captured into platform escrow on host confirmation.
type AuthorizeRequest struct {
	CustomerID     string
	Amount         float64
	Currency       string
	Description    string
	IdempotencyKey string
}

// Gateway is the external payment processor boundary. Every call is passed
// an idempotency key so a retried call cannot double-charge or
// double-refund, and every call runs under a bounded timeout — a timeout is
// treated as failure, never success.
type Gateway interface {
	// Authorize places a hold for the amount and returns its reference.
	Authorize(ctx context.Context, req AuthorizeRequest) (*Result, error)
	// Capture converts an authorization hold into a charge held in escrow.
	Capture(ctx context.Context, ref string, amount float64, idempotencyKey string) (*Result, error)
	// Void releases an uncaptured hold in full.
	Void(ctx context.Context, ref string, idempotencyKey string) (*Result, error)
	// Refund returns amount (possibly partial) of a captured charge.
	Refund(ctx context.Context, ref string, amount float64, idempotencyKey string) (*Result, error)
	// Release pays out escrowed funds to the host's connected account.
	Release(ctx context.Context, accountID string, amount float64, currency, idempotencyKey string) (*Result, error)
}
