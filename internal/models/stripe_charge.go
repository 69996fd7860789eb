package models

import (
	"encoding/json"
	"time"
)

// StripeCharge is the local copy of a payment processor charge object.
type StripeCharge struct {
	ID                  int             `json:"id"`
	StripeID            string          `json:"stripe_id"`
	Amount              int64           `json:"amount"`
	AmountRefunded      int64           `json:"amount_refunded"`
	BalanceTransaction  *string         `json:"balance_transaction,omitempty"`
	Captured            *bool           `json:"captured,omitempty"`
	Created             int64           `json:"created"`
	Currency            string          `json:"currency"`
	Customer            *string         `json:"customer,omitempty"`
	Description         *string         `json:"description,omitempty"`
	Dispute             *string         `json:"dispute,omitempty"`
	FailureCode         *string         `json:"failure_code,omitempty"`
	FailureMessage      *string         `json:"failure_message,omitempty"`
	FraudDetails        json.RawMessage `json:"fraud_details,omitempty"`
	Invoice             *string         `json:"invoice,omitempty"`
	Livemode            bool            `json:"livemode"`
	Metadata            json.RawMessage `json:"metadata,omitempty"`
	OrderID             *string         `json:"order_id,omitempty"`
	Outcome             json.RawMessage `json:"outcome,omitempty"`
	Paid                bool            `json:"paid"`
	ReceiptEmail        *string         `json:"receipt_email,omitempty"`
	ReceiptNumber       *string         `json:"receipt_number,omitempty"`
	Refunded            bool            `json:"refunded"`
	Shipping            json.RawMessage `json:"shipping,omitempty"`
	Source              *string         `json:"source,omitempty"`
	StatementDescriptor *string         `json:"statement_descriptor,omitempty"`
	Status              string          `json:"status"`
}

func (c *StripeCharge) CreatedAt() time.Time {
	return time.Unix(c.Created, 0).UTC()
}

// Pending charges are neither captured nor refunded yet and may still change upstream.
func (c *StripeCharge) Pending() bool {
	captured := c.Captured != nil && *c.Captured
	return !captured && !c.Refunded && c.Status != "failed"
}
