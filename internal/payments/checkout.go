// File: internal/payments/checkout.go
// Package payments talks to the Stripe payments extension through its
// Firestore contract: a session request document is written under
// customers/{uid}/checkout_sessions and the extension answers by filling
// in either a redirect url or an error on the same document.
package payments

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"

	"inzerio_backend/internal/config"
)

const (
	customersCollection = "customers"
	sessionsCollection  = "checkout_sessions"
)

// Checkout modes.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// SessionRequest describes the checkout session to create.
type SessionRequest struct {
	PriceID             string
	Mode                string
	SuccessURL          string
	CancelURL           string
	Metadata            map[string]string
	AllowPromotionCodes bool
}

// Session is a created checkout session with the redirect URL to send the
// buyer to.
type Session struct {
	ID  string
	URL string
}

// Client creates checkout sessions and waits for the extension to answer.
type Client interface {
	CreateSession(ctx context.Context, uid string, req SessionRequest) (*Session, error)
}

type firestoreClient struct {
	client       *firestore.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
}

// NewClient creates the Firestore-backed checkout client.
func NewClient(fsClient *firestore.Client, cfg *config.Config, logger *zap.Logger) Client {
	return &firestoreClient{
		client:       fsClient,
		pollInterval: cfg.CheckoutPollInterval,
		pollTimeout:  cfg.CheckoutPollTimeout,
		logger:       logger.Named("CheckoutClient"),
	}
}

func (c *firestoreClient) CreateSession(ctx context.Context, uid string, req SessionRequest) (*Session, error) {
	if req.PriceID == "" {
		return nil, fmt.Errorf("checkout: price ID is required")
	}

	doc := map[string]interface{}{
		"price":       req.PriceID,
		"mode":        req.Mode,
		"success_url": req.SuccessURL,
		"cancel_url":  req.CancelURL,
	}
	if len(req.Metadata) > 0 {
		doc["metadata"] = req.Metadata
	}
	if req.AllowPromotionCodes {
		doc["allow_promotion_codes"] = true
	}

	ref, _, err := c.client.Collection(customersCollection).Doc(uid).Collection(sessionsCollection).Add(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("checkout: creating session document: %w", err)
	}
	c.logger.Debug("Checkout session document created",
		zap.String("uid", uid), zap.String("sessionID", ref.ID), zap.String("mode", req.Mode))

	url, err := c.waitForURL(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &Session{ID: ref.ID, URL: url}, nil
}

// waitForURL polls the session document until the extension fills in a
// url or an error. Plain polling instead of a snapshot listener; some
// clients sit behind proxies that break long-lived streams, and the
// extension answers within a few seconds anyway.
func (c *firestoreClient) waitForURL(ctx context.Context, ref *firestore.DocumentRef) (string, error) {
	deadline := time.Now().Add(c.pollTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		snap, err := ref.Get(ctx)
		if err != nil {
			c.logger.Warn("Checkout session poll failed", zap.String("sessionID", ref.ID), zap.Error(err))
		} else {
			data := snap.Data()
			if errVal, ok := data["error"]; ok && errVal != nil {
				return "", fmt.Errorf("checkout: session rejected: %v", errVal)
			}
			if url, ok := data["url"].(string); ok && url != "" {
				return url, nil
			}
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("checkout: timed out waiting for session %s", ref.ID)
		}
	}
}
