package customers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/nnaudio/storefront-api/pkg/errors"
)

type stubClient struct {
	lists     [][]Customer
	listErr   error
	listCalls []string
	created   *Customer
	createErr error
	creates   []CreateParams
}

func (s *stubClient) ListByEmail(ctx context.Context, email string, limit int64) ([]Customer, error) {
	s.listCalls = append(s.listCalls, email)
	if s.listErr != nil {
		return nil, s.listErr
	}
	idx := len(s.listCalls) - 1
	if idx < len(s.lists) {
		return s.lists[idx], nil
	}
	return nil, nil
}

func (s *stubClient) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	s.creates = append(s.creates, params)
	return s.created, s.createErr
}

func newTestService(t *testing.T, client Client) *service {
	t.Helper()
	svc, err := NewService(client, nil)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 5, 4, 13, 45, 0, 0, time.UTC) }
	return impl
}

func TestFindOrCreateReturnsExistingCustomer(t *testing.T) {
	client := &stubClient{lists: [][]Customer{{{ID: "cus_first"}, {ID: "cus_second"}}}}
	id, err := newTestService(t, client).FindOrCreate(context.Background(), "  Buyer@Example.COM ", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "cus_first", id)
	assert.Equal(t, []string{"buyer@example.com"}, client.listCalls)
	assert.Empty(t, client.creates)
}

func TestFindOrCreateCreatesWithMetadataAndIdempotencyKey(t *testing.T) {
	client := &stubClient{created: &Customer{ID: "cus_new"}}
	id, err := newTestService(t, client).FindOrCreate(context.Background(), "buyer@example.com", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "cus_new", id)
	require.Len(t, client.creates, 1)
	params := client.creates[0]
	assert.Equal(t, "buyer@example.com", params.Email)
	assert.Equal(t, "user-1", params.UserID)
	assert.True(t, strings.HasPrefix(params.IdempotencyKey, "customer-create:"))
	assert.True(t, strings.HasSuffix(params.IdempotencyKey, ":2026050413"))
}

func TestFindOrCreateRelistsAfterCreateFailure(t *testing.T) {
	client := &stubClient{
		lists:     [][]Customer{nil, {{ID: "cus_raced"}}},
		createErr: errors.New("idempotency conflict"),
	}
	id, err := newTestService(t, client).FindOrCreate(context.Background(), "buyer@example.com", "")

	require.NoError(t, err)
	assert.Equal(t, "cus_raced", id)
	assert.Len(t, client.listCalls, 2)
}

func TestFindOrCreateSurfacesCreateFailure(t *testing.T) {
	client := &stubClient{createErr: errors.New("card_error")}
	_, err := newTestService(t, client).FindOrCreate(context.Background(), "buyer@example.com", "")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeProcessor))
	assert.Len(t, client.listCalls, 2, "create failure re-lists exactly once")
}

func TestFindOrCreateListFailure(t *testing.T) {
	client := &stubClient{listErr: errors.New("down")}
	_, err := newTestService(t, client).FindOrCreate(context.Background(), "buyer@example.com", "")

	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeProcessor))
	assert.Empty(t, client.creates)
}

func TestFindOrCreateRequiresEmail(t *testing.T) {
	_, err := newTestService(t, &stubClient{}).FindOrCreate(context.Background(), "  ", "user-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestIdempotencyKeyIsStablePerHour(t *testing.T) {
	at := time.Date(2026, 5, 4, 13, 5, 0, 0, time.UTC)
	a := IdempotencyKey("Buyer@Example.com", at)
	b := IdempotencyKey("buyer@example.com ", at.Add(40*time.Minute))
	c := IdempotencyKey("buyer@example.com", at.Add(time.Hour))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
