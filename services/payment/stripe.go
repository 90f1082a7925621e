package payment

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/transfer"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway against Stripe. Holds are manual-capture
// PaymentIntents; escrow release is a Transfer to the host's connected
// account.
type StripeGateway struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewStripeGateway sets the global stripe key and returns the adapter.
func NewStripeGateway(apiKey string, timeout time.Duration, logger *zap.Logger) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{timeout: timeout, logger: logger}
}

// minorUnits converts a major-unit amount to the gateway's integer minor
// units (centimes for MAD).
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (g *StripeGateway) Authorize(ctx context.Context, req AuthorizeRequest) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minorUnits(req.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Customer:      stripe.String(req.CustomerID),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(req.Description),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)

	intent, err := paymentintent.New(params)
	if err != nil {
		g.logger.Warn("stripe authorize failed", zap.Error(err))
		return nil, fmt.Errorf("stripe authorize: %w", err)
	}
	return &Result{Ref: intent.ID}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, ref string, amount float64, idempotencyKey string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(minorUnits(amount)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	intent, err := paymentintent.Capture(ref, params)
	if err != nil {
		g.logger.Warn("stripe capture failed", zap.String("ref", ref), zap.Error(err))
		return nil, fmt.Errorf("stripe capture: %w", err)
	}
	return &Result{Ref: intent.ID}, nil
}

func (g *StripeGateway) Void(ctx context.Context, ref string, idempotencyKey string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	intent, err := paymentintent.Cancel(ref, params)
	if err != nil {
		g.logger.Warn("stripe void failed", zap.String("ref", ref), zap.Error(err))
		return nil, fmt.Errorf("stripe void: %w", err)
	}
	return &Result{Ref: intent.ID}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, ref string, amount float64, idempotencyKey string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(ref),
		Amount:        stripe.Int64(minorUnits(amount)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	ref2, err := refund.New(params)
	if err != nil {
		g.logger.Warn("stripe refund failed", zap.String("ref", ref), zap.Error(err))
		return nil, fmt.Errorf("stripe refund: %w", err)
	}
	return &Result{Ref: ref2.ID}, nil
}

func (g *StripeGateway) Release(ctx context.Context, accountID string, amount float64, currency, idempotencyKey string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.TransferParams{
		Amount:      stripe.Int64(minorUnits(amount)),
		Currency:    stripe.String(strings.ToLower(currency)),
		Destination: stripe.String(accountID),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	tr, err := transfer.New(params)
	if err != nil {
		g.logger.Warn("stripe release failed", zap.String("account", accountID), zap.Error(err))
		return nil, fmt.Errorf("stripe release: %w", err)
	}
	return &Result{Ref: tr.ID}, nil
}
