package entity

import (
	"time"

	"kantina/internal/core/id"
)

// Accessor methods promoted to every document variant through embedding.
// They let sealed document interfaces expose common metadata without
// re-declaring it on each variant.

// DocID returns the document ID.
func (d Document) DocID() id.ID { return d.ID }

// DocNumber returns the document number.
func (d Document) DocNumber() string { return d.Number }

// DocDate returns the business date.
func (d Document) DocDate() time.Time { return d.Date }

// DocStatus returns the lifecycle state.
func (d Document) DocStatus() Status { return d.Status }
