package codec

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/TemirB/orders-api/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrBadPayload marks a body that is not a well-formed orders batch.
var ErrBadPayload = errors.New("bad payload")

// OrderInput is one order as clients send it. customer_id may arrive as a
// number or a numeric string; dates accept the layouts of domain.ParseTime.
type OrderInput struct {
	CustomerID json.Number         `json:"customer_id" xml:"customer_id"`
	OrderDate  string              `json:"order_date" xml:"order_date"`
	Status     string              `json:"status" xml:"status"`
	Total      decimal.NullDecimal `json:"total" xml:"total"`
	CreatedAt  string              `json:"created_at,omitempty" xml:"created_at,omitempty"`
	UpdatedAt  string              `json:"updated_at,omitempty" xml:"updated_at,omitempty"`
}

type jsonBatch struct {
	Orders *[]OrderInput `json:"orders"`
}

type xmlBatch struct {
	XMLName xml.Name     `xml:"orders"`
	Orders  []OrderInput `xml:"order"`
}

// ToDomain converts the input and stamps missing write timestamps with now.
func (in OrderInput) ToDomain(now time.Time) (domain.Order, error) {
	var o domain.Order

	id := strings.TrimSpace(in.CustomerID.String())
	if id == "" {
		return o, fmt.Errorf("%w: customer_id is required", domain.ErrInvalidOrder)
	}
	customerID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return o, fmt.Errorf("%w: customer_id %q is not an integer", domain.ErrInvalidOrder, id)
	}
	o.CustomerID = customerID

	if strings.TrimSpace(in.OrderDate) == "" {
		return o, fmt.Errorf("%w: order_date is required", domain.ErrInvalidOrder)
	}
	if o.OrderDate, err = domain.ParseTime(in.OrderDate); err != nil {
		return o, fmt.Errorf("%w: order_date: %v", domain.ErrInvalidOrder, err)
	}
	if in.CreatedAt != "" {
		if o.CreatedAt, err = domain.ParseTime(in.CreatedAt); err != nil {
			return o, fmt.Errorf("%w: created_at: %v", domain.ErrInvalidOrder, err)
		}
	}
	if in.UpdatedAt != "" {
		if o.UpdatedAt, err = domain.ParseTime(in.UpdatedAt); err != nil {
			return o, fmt.Errorf("%w: updated_at: %v", domain.ErrInvalidOrder, err)
		}
	}

	if !in.Total.Valid {
		return o, fmt.Errorf("%w: total is required", domain.ErrInvalidOrder)
	}

	o.Status = strings.TrimSpace(in.Status)
	o.Total = in.Total.Decimal
	o.Stamp(now)

	return o, o.Validate()
}

// DecodeJSON reads {"orders":[...]}.
func DecodeJSON(r io.Reader, now time.Time) ([]domain.Order, error) {
	var batch jsonBatch
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	if batch.Orders == nil {
		return nil, fmt.Errorf("%w: missing \"orders\"", ErrBadPayload)
	}
	return toDomain(*batch.Orders, now)
}

// DecodeXML reads <orders><order>...</order></orders>.
func DecodeXML(r io.Reader, now time.Time) ([]domain.Order, error) {
	var batch xmlBatch
	if err := xml.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return toDomain(batch.Orders, now)
}

func toDomain(in []OrderInput, now time.Time) ([]domain.Order, error) {
	out := make([]domain.Order, len(in))
	for i := range in {
		o, err := in[i].ToDomain(now)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		out[i] = o
	}
	return out, nil
}
