// Package counterparty provides the Counterparty catalog (Контрагенты):
// suppliers the business buys from and clients it sells to.
package counterparty

import (
	"context"

	"kantina/internal/core/apperror"
	"kantina/internal/core/entity"
	"kantina/internal/core/types"
)

// Kind distinguishes suppliers from clients.
type Kind string

const (
	KindSupplier Kind = "supplier"
	KindClient   Kind = "client"
)

// Valid reports whether k is a known counterparty kind.
func (k Kind) Valid() bool {
	return k == KindSupplier || k == KindClient
}

// Counterparty represents a supplier or client account.
type Counterparty struct {
	entity.Catalog

	Kind Kind `db:"kind" json:"kind"`

	// InitialBalance is the pre-existing debt carried into the system.
	// Signed: positive means owed to the business (supplier) or owed by
	// the client. Settlement treats it as the oldest outstanding item.
	InitialBalance types.Money `db:"initial_balance" json:"initialBalance"`

	// Contact details (display only)
	Phone string `db:"phone" json:"phone,omitempty"`
	Email string `db:"email" json:"email,omitempty"`
}

// New creates a new counterparty.
func New(kind Kind, code, name string) *Counterparty {
	return &Counterparty{
		Catalog: entity.NewCatalog(code, name),
		Kind:    kind,
	}
}

// Validate implements entity.Validatable.
func (c *Counterparty) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}
	if !c.Kind.Valid() {
		return apperror.NewValidation("unknown counterparty kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}
	return nil
}
