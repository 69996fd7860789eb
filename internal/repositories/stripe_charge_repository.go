package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"bnbBack/internal/models"
)

type StripeChargeRepository struct {
	DB *sql.DB
}

func NewStripeChargeRepository(db *sql.DB) *StripeChargeRepository {
	return &StripeChargeRepository{DB: db}
}

const chargeColumns = `id, stripe_id, amount, amount_refunded, balance_transaction, captured, created, currency,
	customer, description, dispute, failure_code, failure_message, fraud_details, invoice, livemode,
	metadata, order_id, outcome, paid, receipt_email, receipt_number, refunded, shipping, source,
	statement_descriptor, status`

// UpsertCharge stores c keyed by its processor id, inserting it on first sight.
func (r *StripeChargeRepository) UpsertCharge(ctx context.Context, c models.StripeCharge) (models.StripeCharge, error) {
	existing, err := r.GetChargeByStripeID(ctx, c.StripeID)
	switch {
	case err == nil:
		c.ID = existing.ID
		return c, r.updateCharge(ctx, c)
	case !errors.Is(err, models.ErrChargeNotFound):
		return models.StripeCharge{}, err
	}

	query := `
		INSERT INTO stripe_charge (stripe_id, amount, amount_refunded, balance_transaction, captured, created,
			currency, customer, description, dispute, failure_code, failure_message, fraud_details, invoice,
			livemode, metadata, order_id, outcome, paid, receipt_email, receipt_number, refunded, shipping,
			source, statement_descriptor, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.DB.ExecContext(ctx, query, chargeArgs(c)...)
	if err != nil {
		if isDuplicateKey(err) {
			// Lost a race with a concurrent insert of the same charge.
			existing, getErr := r.GetChargeByStripeID(ctx, c.StripeID)
			if getErr != nil {
				return models.StripeCharge{}, err
			}
			c.ID = existing.ID
			return c, r.updateCharge(ctx, c)
		}
		return models.StripeCharge{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.StripeCharge{}, err
	}
	c.ID = int(id)
	return c, nil
}

func (r *StripeChargeRepository) updateCharge(ctx context.Context, c models.StripeCharge) error {
	query := `
		UPDATE stripe_charge SET stripe_id = ?, amount = ?, amount_refunded = ?, balance_transaction = ?,
			captured = ?, created = ?, currency = ?, customer = ?, description = ?, dispute = ?,
			failure_code = ?, failure_message = ?, fraud_details = ?, invoice = ?, livemode = ?, metadata = ?,
			order_id = ?, outcome = ?, paid = ?, receipt_email = ?, receipt_number = ?, refunded = ?,
			shipping = ?, source = ?, statement_descriptor = ?, status = ?
		WHERE id = ?
	`
	_, err := r.DB.ExecContext(ctx, query, append(chargeArgs(c), c.ID)...)
	return err
}

func (r *StripeChargeRepository) GetChargeByStripeID(ctx context.Context, stripeID string) (models.StripeCharge, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+chargeColumns+` FROM stripe_charge WHERE stripe_id = ?`, stripeID)
	c, err := scanCharge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StripeCharge{}, models.ErrChargeNotFound
	}
	return c, err
}

// GetPendingCharges returns up to limit charges that are neither captured, refunded nor failed.
func (r *StripeChargeRepository) GetPendingCharges(ctx context.Context, limit int) ([]models.StripeCharge, error) {
	query := `SELECT ` + chargeColumns + ` FROM stripe_charge
		WHERE (captured IS NULL OR captured = 0) AND refunded = 0 AND status <> 'failed'
		ORDER BY created LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	charges := []models.StripeCharge{}
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

func chargeArgs(c models.StripeCharge) []any {
	return []any{
		c.StripeID, c.Amount, c.AmountRefunded, c.BalanceTransaction, c.Captured, c.Created, c.Currency,
		c.Customer, c.Description, c.Dispute, c.FailureCode, c.FailureMessage, jsonArg(c.FraudDetails), c.Invoice,
		c.Livemode, jsonArg(c.Metadata), c.OrderID, jsonArg(c.Outcome), c.Paid, c.ReceiptEmail, c.ReceiptNumber,
		c.Refunded, jsonArg(c.Shipping), c.Source, c.StatementDescriptor, c.Status,
	}
}

func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

func scanCharge(row rowScanner) (models.StripeCharge, error) {
	var (
		c                                               models.StripeCharge
		balance, customer, description, dispute         sql.NullString
		failureCode, failureMessage, invoice, orderID   sql.NullString
		receiptEmail, receiptNumber, source, descriptor sql.NullString
		fraud, metadata, outcome, shipping              sql.NullString
		captured                                        sql.NullBool
	)
	err := row.Scan(
		&c.ID, &c.StripeID, &c.Amount, &c.AmountRefunded, &balance, &captured, &c.Created, &c.Currency,
		&customer, &description, &dispute, &failureCode, &failureMessage, &fraud, &invoice, &c.Livemode,
		&metadata, &orderID, &outcome, &c.Paid, &receiptEmail, &receiptNumber, &c.Refunded, &shipping, &source,
		&descriptor, &c.Status,
	)
	if err != nil {
		return models.StripeCharge{}, err
	}

	if captured.Valid {
		c.Captured = &captured.Bool
	}
	c.BalanceTransaction = nullString(balance)
	c.Customer = nullString(customer)
	c.Description = nullString(description)
	c.Dispute = nullString(dispute)
	c.FailureCode = nullString(failureCode)
	c.FailureMessage = nullString(failureMessage)
	c.Invoice = nullString(invoice)
	c.OrderID = nullString(orderID)
	c.ReceiptEmail = nullString(receiptEmail)
	c.ReceiptNumber = nullString(receiptNumber)
	c.Source = nullString(source)
	c.StatementDescriptor = nullString(descriptor)
	c.FraudDetails = nullJSON(fraud)
	c.Metadata = nullJSON(metadata)
	c.Outcome = nullJSON(outcome)
	c.Shipping = nullJSON(shipping)
	return c, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullJSON(s sql.NullString) json.RawMessage {
	if !s.Valid {
		return nil
	}
	return json.RawMessage(s.String)
}
