package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/nnaudio/storefront-api/pkg/db/models"
	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
)

func strPtr(v string) *string { return &v }

func attachFixture(t *testing.T) (*fixture, uuid.UUID) {
	t.Helper()
	f := newFixture(t)
	userID := uuid.New()
	f.profiles.profile = &models.Profile{ID: userID, CustomerID: strPtr("cus_1")}
	f.client.intent = &Intent{ID: "pi_1", CustomerID: "cus_1"}
	return f, userID
}

func TestAttachPaymentMethodAttachesAndSetsDefault(t *testing.T) {
	f, userID := attachFixture(t)
	f.client.pm = &PaymentMethod{ID: "pm_1"}

	res, err := f.svc.AttachPaymentMethod(context.Background(), AttachInput{
		PaymentIntentID: "pi_1",
		PaymentMethodID: "pm_1",
		UserID:          userID.String(),
	})
	require.NoError(t, err)

	assert.False(t, res.AlreadyAttached)
	assert.True(t, res.DefaultSet)
	assert.Equal(t, msgAttached, res.Message)
	assert.Equal(t, []string{"pm_1:cus_1"}, f.client.attached)
	assert.Equal(t, []string{"pm_1"}, f.client.defaults)
}

func TestAttachPaymentMethodKeepsExistingDefault(t *testing.T) {
	f, userID := attachFixture(t)
	f.client.pmErr = &stripe.Error{Code: stripe.ErrorCodeResourceMissing}
	f.client.customer = &BillingCustomer{ID: "cus_1", DefaultPaymentMethodID: "pm_old"}

	res, err := f.svc.AttachPaymentMethod(context.Background(), AttachInput{
		PaymentIntentID: "pi_1",
		PaymentMethodID: "pm_2",
		UserID:          userID.String(),
	})
	require.NoError(t, err)
	assert.False(t, res.DefaultSet)
	assert.Len(t, f.client.attached, 1)
	assert.Empty(t, f.client.defaults)
}

func TestAttachPaymentMethodAlreadyAttached(t *testing.T) {
	f, userID := attachFixture(t)
	f.client.pm = &PaymentMethod{ID: "pm_1", CustomerID: "cus_1"}

	res, err := f.svc.AttachPaymentMethod(context.Background(), AttachInput{
		PaymentIntentID: "pi_1",
		PaymentMethodID: "pm_1",
		UserID:          userID.String(),
	})
	require.NoError(t, err)
	assert.True(t, res.AlreadyAttached)
	assert.Equal(t, msgAlreadyAttached, res.Message)
	assert.Empty(t, f.client.attached)
}

func TestAttachPaymentMethodRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(f *fixture)
		input   func(userID uuid.UUID) AttachInput
		code    pkgerrors.Code
		message string
	}{
		{
			name:    "missing payment method",
			input:   func(userID uuid.UUID) AttachInput { return AttachInput{PaymentIntentID: "pi_1", UserID: userID.String()} },
			code:    pkgerrors.CodeValidation,
			message: "Payment method ID is required",
		},
		{
			name:    "anonymous caller",
			input:   func(uuid.UUID) AttachInput { return AttachInput{PaymentIntentID: "pi_1", PaymentMethodID: "pm_1"} },
			code:    pkgerrors.CodeUnauthorized,
			message: "Not authenticated",
		},
		{
			name:    "intent without customer",
			mutate:  func(f *fixture) { f.client.intent = &Intent{ID: "pi_1"} },
			code:    pkgerrors.CodeValidation,
			message: "Payment intent does not have a customer",
		},
		{
			name:    "missing intent",
			mutate:  func(f *fixture) { f.client.getErr = &stripe.Error{Code: stripe.ErrorCodeResourceMissing} },
			code:    pkgerrors.CodeNotFound,
			message: "Payment intent not found",
		},
		{
			name:    "customer mismatch",
			mutate:  func(f *fixture) { f.profiles.profile.CustomerID = strPtr("cus_other") },
			code:    pkgerrors.CodeForbidden,
			message: "Unauthorized",
		},
		{
			name:    "no profile",
			mutate:  func(f *fixture) { f.profiles.profile = nil },
			code:    pkgerrors.CodeForbidden,
			message: "Unauthorized",
		},
		{
			name:    "method owned by another customer",
			mutate:  func(f *fixture) { f.client.pm = &PaymentMethod{ID: "pm_1", CustomerID: "cus_other"} },
			code:    pkgerrors.CodeConflict,
			message: "Payment method belongs to another customer",
		},
		{
			name:    "attach failure",
			mutate:  func(f *fixture) { f.client.attachErr = &stripe.Error{Msg: "This PaymentMethod was previously used"} },
			code:    pkgerrors.CodeProcessor,
			message: "This PaymentMethod was previously used",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, userID := attachFixture(t)
			f.client.pm = &PaymentMethod{ID: "pm_1"}
			if tc.mutate != nil {
				tc.mutate(f)
			}
			input := AttachInput{PaymentIntentID: "pi_1", PaymentMethodID: "pm_1", UserID: userID.String()}
			if tc.input != nil {
				input = tc.input(userID)
			}

			_, err := f.svc.AttachPaymentMethod(context.Background(), input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed, "expected typed error, got %v", err)
			assert.Equal(t, tc.code, typed.Code())
			assert.Equal(t, tc.message, typed.Message())
		})
	}
}
