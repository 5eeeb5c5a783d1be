package codec

import (
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"github.com/TemirB/orders-api/internal/application/service"
	"github.com/TemirB/orders-api/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatJSON, FormatXML:
		return Format(s), true
	}
	return "", false
}

func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Decode reads an orders batch in format f.
func (f Format) Decode(r io.Reader, now time.Time) ([]domain.Order, error) {
	if f == FormatXML {
		return DecodeXML(r, now)
	}
	return DecodeJSON(r, now)
}

// ErrorBody is the payload of every non-2xx response.
type ErrorBody struct {
	Error string `json:"error"`
}

// XML documents are rooted at <data>; list items are <order>.
type xmlOrder struct {
	ID         int64  `xml:"id"`
	CustomerID int64  `xml:"customer_id"`
	OrderDate  string `xml:"order_date"`
	Status     string `xml:"status"`
	Total      string `xml:"total"`
	CreatedAt  string `xml:"created_at"`
	UpdatedAt  string `xml:"updated_at"`
}

type xmlOrders struct {
	Orders []xmlOrder `xml:"order"`
}

type xmlList struct {
	XMLName xml.Name `xml:"data"`
	Status  string   `xml:"status"`
	Data    struct {
		Orders xmlOrders `xml:"orders"`
	} `xml:"data"`
}

type xmlCreate struct {
	XMLName     xml.Name `xml:"data"`
	Status      string   `xml:"status"`
	Message     string   `xml:"message"`
	OrdersCount int      `xml:"orders_count"`
}

type xmlError struct {
	XMLName xml.Name `xml:"data"`
	Error   string   `xml:"error"`
}

func toXML(v any) any {
	switch t := v.(type) {
	case service.ListResult:
		var out xmlList
		out.Status = t.Status
		out.Data.Orders.Orders = make([]xmlOrder, len(t.Data.Orders))
		for i, o := range t.Data.Orders {
			out.Data.Orders.Orders[i] = xmlOrder{
				ID:         o.ID,
				CustomerID: o.CustomerID,
				OrderDate:  o.OrderDate.Format(time.RFC3339),
				Status:     o.Status,
				Total:      o.Total.String(),
				CreatedAt:  o.CreatedAt.Format(time.RFC3339),
				UpdatedAt:  o.UpdatedAt.Format(time.RFC3339),
			}
		}
		return out
	case service.CreateResult:
		return xmlCreate{Status: t.Status, Message: t.Message, OrdersCount: t.OrdersCount}
	case ErrorBody:
		return xmlError{Error: t.Error}
	}
	return v
}

// Write renders v with the given status code in format f.
func Write(w http.ResponseWriter, f Format, status int, v any) error {
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(status)

	if f == FormatXML {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(toXML(v)); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
