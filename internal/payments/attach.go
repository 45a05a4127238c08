package payments

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nnaudio/storefront-api/pkg/db"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
	pkgstripe "github.com/nnaudio/storefront-api/pkg/stripe"
)

const (
	msgAlreadyAttached = "Payment method already attached"
	msgAttached        = "Payment method attached successfully"
)

// AttachPaymentMethod saves the payment method used on an intent to the
// caller's customer and makes it the default when none is set.
func (s *service) AttachPaymentMethod(ctx context.Context, in AttachInput) (*AttachResult, error) {
	if strings.TrimSpace(in.PaymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Payment method ID is required")
	}
	userID, err := uuid.Parse(strings.TrimSpace(in.UserID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Not authenticated")
	}
	if s.profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile store not configured")
	}

	intent, err := s.client.GetPaymentIntent(ctx, in.PaymentIntentID)
	if err != nil {
		if pkgstripe.IsResourceMissing(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Payment intent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
	}
	if intent.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Payment intent does not have a customer")
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile == nil || profile.CustomerID == nil || *profile.CustomerID != intent.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Unauthorized")
	}

	pm, err := s.client.GetPaymentMethod(ctx, in.PaymentMethodID)
	if err == nil && pm != nil && pm.CustomerID != "" {
		if pm.CustomerID != intent.CustomerID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Payment method belongs to another customer")
		}
		return &AttachResult{AlreadyAttached: true, Message: msgAlreadyAttached}, nil
	}

	if err := s.client.AttachPaymentMethod(ctx, in.PaymentMethodID, intent.CustomerID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
	}

	result := &AttachResult{Message: msgAttached}
	customer, err := s.client.GetCustomer(ctx, intent.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
	}
	if customer != nil && !customer.Deleted && customer.DefaultPaymentMethodID == "" {
		if err := s.client.SetDefaultPaymentMethod(ctx, intent.CustomerID, in.PaymentMethodID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeProcessor, err, pkgstripe.ErrorMessage(err))
		}
		result.DefaultSet = true
	}

	s.logInfo(ctx, "payment_method.attached", map[string]any{
		"payment_intent_id": intent.ID,
		"customer_id":       intent.CustomerID,
		"default_set":       result.DefaultSet,
	})
	return result, nil
}
