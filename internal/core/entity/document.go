// Package entity provides core domain entities.
package entity

import (
	"context"
	"time"

	"kantina/internal/core/apperror"
	"kantina/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// Status is the document lifecycle state.
// Only Confirmed documents participate in register replay.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsConfirmed reports whether the document is posted/final.
func (s Status) IsConfirmed() bool {
	return s == StatusConfirmed
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Document is the base type for business transactions (Документы).
// Examples: GoodsReceipt, WriteOff, InternalTransfer, SalesInvoice.
type Document struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Number is the document number (unique within type)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status is the lifecycle state
	Status Status `db:"status" json:"status"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`

	// Audit fields
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(number string, date time.Time) Document {
	now := time.Now().UTC()
	return Document{
		ID:        id.New(),
		Number:    number,
		Date:      date,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if !d.Status.Valid() {
		return apperror.NewValidation("unknown document status").
			WithDetail("field", "status").
			WithDetail("value", string(d.Status))
	}
	return nil
}

// Touch updates the UpdatedAt timestamp.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}
