package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stripe/stripe-go/v84"
)

// ErrorDump is the log-only view of an error chain. None of it is sent to
// clients.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PG     *PGDetails     `json:"pg,omitempty"`
	Stripe *StripeDetails `json:"stripe,omitempty"`
}

type PGDetails struct {
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

type StripeDetails struct {
	Type        string `json:"type,omitempty"`
	Code        string `json:"code,omitempty"`
	DeclineCode string `json:"decline_code,omitempty"`
	Param       string `json:"param,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	HTTPStatus  int    `json:"http_status,omitempty"`
}

// Fields flattens the dump into log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if pg := d.PG; pg != nil {
		fields["pg_code"] = pg.Code
		fields["pg_constraint"] = pg.Constraint
		fields["pg_table"] = pg.Table
		fields["pg_detail"] = pg.Detail
		fields["pg_message"] = pg.Message
	}
	if s := d.Stripe; s != nil {
		fields["stripe_type"] = s.Type
		fields["stripe_code"] = s.Code
		fields["stripe_request_id"] = s.RequestID
		fields["stripe_http_status"] = s.HTTPStatus
		if s.DeclineCode != "" {
			fields["stripe_decline_code"] = s.DeclineCode
		}
		if s.Param != "" {
			fields["stripe_param"] = s.Param
		}
	}
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.PG = pgDetails(err)

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		d.Stripe = &StripeDetails{
			Type:        string(stripeErr.Type),
			Code:        string(stripeErr.Code),
			DeclineCode: string(stripeErr.DeclineCode),
			Param:       stripeErr.Param,
			RequestID:   stripeErr.RequestID,
			HTTPStatus:  stripeErr.HTTPStatusCode,
		}
	}

	return d
}

func pgDetails(err error) *PGDetails {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDetails{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDetails{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
