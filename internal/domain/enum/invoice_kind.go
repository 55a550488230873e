package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// InvoiceKind distinguishes full-settlement invoices from partial ones
type InvoiceKind int

const (
	InvoiceKindTotal   InvoiceKind = 0
	InvoiceKindPartial InvoiceKind = 1
)

func (k InvoiceKind) String() string {
	return [...]string{"Total", "Partial"}[k]
}

func (k InvoiceKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *InvoiceKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = InvoiceKind(i)
		return nil
	}
	switch str {
	case "Total":
		*k = InvoiceKindTotal
	case "Partial":
		*k = InvoiceKindPartial
	}
	return nil
}

func (k InvoiceKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *InvoiceKind) Scan(value interface{}) error {
	if value == nil {
		*k = InvoiceKindTotal
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = InvoiceKind(v)
	case int:
		*k = InvoiceKind(v)
	}
	return nil
}
