package customers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	"github.com/nnaudio/storefront-api/pkg/logger"
	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

const listLimit = 10

// Customer is the processor's customer record.
type Customer struct {
	ID    string
	Email string
}

// CreateParams describes a new processor customer.
type CreateParams struct {
	Email          string
	UserID         string
	IdempotencyKey string
}

// Client is the subset of the processor customer API used here.
type Client interface {
	ListByEmail(ctx context.Context, email string, limit int64) ([]Customer, error)
	Create(ctx context.Context, params CreateParams) (*Customer, error)
}

// Service ensures a signed-in shopper has a processor customer.
type Service interface {
	FindOrCreate(ctx context.Context, email, userID string) (string, error)
}

type service struct {
	client Client
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds the customer service.
func NewService(client Client, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer client required")
	}
	return &service{client: client, logg: logg, now: time.Now}, nil
}

// FindOrCreate returns the id of the first customer listed for email, creating
// one when none exists. A failed create is retried as a lookup once, which
// covers a concurrent request that created the customer first.
func (s *service) FindOrCreate(ctx context.Context, email, userID string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}

	if id, err := s.find(ctx, email); err != nil || id != "" {
		return id, err
	}

	created, createErr := s.client.Create(ctx, CreateParams{
		Email:          email,
		UserID:         strings.TrimSpace(userID),
		IdempotencyKey: IdempotencyKey(email, s.now()),
	})
	if createErr == nil && created != nil && created.ID != "" {
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "customer_id", created.ID), "customer.created")
		}
		return created.ID, nil
	}

	if id, err := s.find(ctx, email); err == nil && id != "" {
		return id, nil
	}
	if createErr == nil {
		return "", pkgerrors.New(pkgerrors.CodeProcessor, "customer creation returned no id")
	}
	return "", pkgerrors.Wrap(pkgerrors.CodeProcessor, createErr, pkgstripe.ErrorMessage(createErr))
}

func (s *service) find(ctx context.Context, email string) (string, error) {
	found, err := s.client.ListByEmail(ctx, email, listLimit)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
	}
	if len(found) == 0 {
		return "", nil
	}
	if len(found) > 1 && s.logg != nil {
		ids := make([]string, 0, len(found))
		for _, c := range found {
			ids = append(ids, c.ID)
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"customer_ids": ids,
			"count":        len(found),
		}), "customer.duplicate_email")
	}
	return found[0].ID, nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IdempotencyKey buckets creates per email per hour so retried requests
// collapse onto one customer.
func IdempotencyKey(email string, at time.Time) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	return "customer-create:" + hex.EncodeToString(sum[:8]) + ":" + at.UTC().Format("2006010215")
}
