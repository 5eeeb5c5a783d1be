package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         int64           `json:"id" xml:"id"`
	CustomerID int64           `json:"customer_id" xml:"customer_id"`
	OrderDate  time.Time       `json:"order_date" xml:"order_date"`
	Status     string          `json:"status" xml:"status"`
	Total      decimal.Decimal `json:"total" xml:"total"`
	CreatedAt  time.Time       `json:"created_at" xml:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" xml:"updated_at"`
}

// Validate reports the first missing required field. It does not touch ID,
// which belongs to the store.
func (o Order) Validate() error {
	switch {
	case o.CustomerID == 0:
		return fmt.Errorf("%w: customer_id is required", ErrInvalidOrder)
	case o.OrderDate.IsZero():
		return fmt.Errorf("%w: order_date is required", ErrInvalidOrder)
	case strings.TrimSpace(o.Status) == "":
		return fmt.Errorf("%w: status is required", ErrInvalidOrder)
	case o.CreatedAt.IsZero() || o.UpdatedAt.IsZero():
		return fmt.Errorf("%w: created_at and updated_at are required", ErrInvalidOrder)
	}
	return nil
}

// Stamp fills the write timestamps that the caller left empty.
func (o *Order) Stamp(now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
}
