package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError reports a missing or malformed item field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ItemInput carries raw client values keyed by the wire field names.
// A nil pointer means the field was not supplied; a non-nil pointer to ""
// means the client explicitly sent an empty value.
type ItemInput struct {
	Name             *string
	SerialNumber     *string
	Brand            *string
	Model            *string
	Condition        *string
	Category         *string
	Room             *string
	PurchaseDate     *string
	PurchaseLocation *string
	Price            *string
	Warranty         *string
	Notes            *string
}

// Set assigns a value by wire field name and reports whether the name is known.
func (in *ItemInput) Set(field, value string) bool {
	v := value
	switch field {
	case "name":
		in.Name = &v
	case "serialNumber":
		in.SerialNumber = &v
	case "brand":
		in.Brand = &v
	case "model":
		in.Model = &v
	case "condition":
		in.Condition = &v
	case "category":
		in.Category = &v
	case "room":
		in.Room = &v
	case "purchaseDate":
		in.PurchaseDate = &v
	case "purchaseLocation":
		in.PurchaseLocation = &v
	case "price":
		in.Price = &v
	case "warranty":
		in.Warranty = &v
	case "notes":
		in.Notes = &v
	default:
		return false
	}
	return true
}

// Empty reports whether no field was supplied.
func (in ItemInput) Empty() bool {
	return in == ItemInput{}
}

// NewItem builds an unsaved item from create input. Every required field
// must be present and non-blank; optional fields take their defaults.
func NewItem(in ItemInput) (*Item, error) {
	required := []struct {
		name string
		val  *string
	}{
		{"name", in.Name},
		{"brand", in.Brand},
		{"model", in.Model},
		{"condition", in.Condition},
		{"category", in.Category},
		{"room", in.Room},
		{"purchaseDate", in.PurchaseDate},
		{"purchaseLocation", in.PurchaseLocation},
		{"price", in.Price},
	}
	for _, f := range required {
		if f.val == nil || strings.TrimSpace(*f.val) == "" {
			return nil, &ValidationError{Field: f.name, Reason: "is required"}
		}
	}

	item := &Item{SerialNumber: DefaultSerialNumber}
	if err := in.ApplyTo(item); err != nil {
		return nil, err
	}
	if item.SerialNumber == "" {
		item.SerialNumber = DefaultSerialNumber
	}
	return item, nil
}

// Validate checks the supplied fields without an item to apply them to.
func (in ItemInput) Validate() error {
	var scratch Item
	return in.ApplyTo(&scratch)
}

// ApplyTo overwrites the supplied fields on item. Nothing is changed when any
// supplied field is invalid.
func (in ItemInput) ApplyTo(item *Item) error {
	next := *item

	var err error
	if in.Name != nil {
		if next.Name, err = requiredText("name", *in.Name); err != nil {
			return err
		}
	}
	if in.Brand != nil {
		if next.Brand, err = requiredText("brand", *in.Brand); err != nil {
			return err
		}
	}
	if in.Model != nil {
		if next.Model, err = requiredText("model", *in.Model); err != nil {
			return err
		}
	}
	if in.PurchaseLocation != nil {
		if next.PurchaseLocation, err = requiredText("purchaseLocation", *in.PurchaseLocation); err != nil {
			return err
		}
	}
	if in.Condition != nil {
		c := Condition(strings.TrimSpace(*in.Condition))
		if !c.Valid() {
			return &ValidationError{Field: "condition", Reason: fmt.Sprintf("must be one of %v", Conditions)}
		}
		next.Condition = c
	}
	if in.Category != nil {
		c := Category(strings.TrimSpace(*in.Category))
		if !c.Valid() {
			return &ValidationError{Field: "category", Reason: fmt.Sprintf("must be one of %v", Categories)}
		}
		next.Category = c
	}
	if in.Room != nil {
		r := Room(strings.TrimSpace(*in.Room))
		if !r.Valid() {
			return &ValidationError{Field: "room", Reason: fmt.Sprintf("must be one of %v", Rooms)}
		}
		next.Room = r
	}
	if in.PurchaseDate != nil {
		if strings.TrimSpace(*in.PurchaseDate) == "" {
			return &ValidationError{Field: "purchaseDate", Reason: "must not be empty"}
		}
		d, err := ParseDate(*in.PurchaseDate)
		if err != nil {
			return &ValidationError{Field: "purchaseDate", Reason: err.Error()}
		}
		next.PurchaseDate = d
	}
	if in.Price != nil {
		p, err := ParsePrice(*in.Price)
		if err != nil {
			return &ValidationError{Field: "price", Reason: err.Error()}
		}
		next.Price = p
	}
	if in.SerialNumber != nil {
		next.SerialNumber = strings.TrimSpace(*in.SerialNumber)
	}
	if in.Warranty != nil {
		if strings.TrimSpace(*in.Warranty) == "" {
			next.Warranty = nil
		} else {
			d, err := ParseDate(*in.Warranty)
			if err != nil {
				return &ValidationError{Field: "warranty", Reason: err.Error()}
			}
			next.Warranty = &d
		}
	}
	if in.Notes != nil {
		next.Notes = strings.TrimSpace(*in.Notes)
	}

	*item = next
	return nil
}

func requiredText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return v, nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and truncates to a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be a date (YYYY-MM-DD)")
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParsePrice parses a non-negative decimal amount.
func ParsePrice(s string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("must be a number")
	}
	if p.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative")
	}
	return p, nil
}
