package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullInput() ItemInput {
	var in ItemInput
	in.Set("name", "Laptop")
	in.Set("brand", "Dell")
	in.Set("model", "XPS 13")
	in.Set("condition", "Excellent")
	in.Set("category", "Electronics")
	in.Set("room", "Bedroom")
	in.Set("purchaseDate", "2024-01-01")
	in.Set("purchaseLocation", "Best Buy")
	in.Set("price", "1200")
	return in
}

func TestNewItemDefaults(t *testing.T) {
	item, err := NewItem(fullInput())
	require.NoError(t, err)

	assert.Equal(t, "Laptop", item.Name)
	assert.Equal(t, DefaultSerialNumber, item.SerialNumber)
	assert.Equal(t, ConditionExcellent, item.Condition)
	assert.Equal(t, "2024-01-01", item.PurchaseDate.Format(DateLayout))
	assert.Equal(t, "1200", item.Price.String())
	assert.Nil(t, item.Warranty)
	assert.Empty(t, item.Notes)
}

func TestNewItemBlankSerialFallsBack(t *testing.T) {
	in := fullInput()
	in.Set("serialNumber", "   ")
	item, err := NewItem(in)
	require.NoError(t, err)
	assert.Equal(t, DefaultSerialNumber, item.SerialNumber)
}

func TestNewItemValidation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value *string
	}{
		{"missing name", "name", nil},
		{"blank brand", "brand", ptr("  ")},
		{"bad condition", "condition", ptr("Broken")},
		{"bad category", "category", ptr("Cars")},
		{"bad room", "room", ptr("Attic")},
		{"bad date", "purchaseDate", ptr("yesterday")},
		{"negative price", "price", ptr("-1")},
		{"nan price", "price", ptr("abc")},
		{"bad warranty", "warranty", ptr("2025-13-40")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fullInput()
			if tt.value == nil {
				in.Name = nil
			} else {
				in.Set(tt.field, *tt.value)
			}
			_, err := NewItem(in)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "err=%v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestApplyToPartial(t *testing.T) {
	item, err := NewItem(fullInput())
	require.NoError(t, err)
	item.Notes = "keep me"

	var patch ItemInput
	patch.Set("price", "500")
	require.NoError(t, patch.ApplyTo(item))

	assert.Equal(t, "500", item.Price.String())
	assert.Equal(t, "Laptop", item.Name)
	assert.Equal(t, "keep me", item.Notes)
}

func TestApplyToClearsOptionalFields(t *testing.T) {
	in := fullInput()
	in.Set("warranty", "2026-01-01")
	in.Set("notes", "boxed")
	in.Set("serialNumber", "SN1")
	item, err := NewItem(in)
	require.NoError(t, err)
	require.NotNil(t, item.Warranty)

	var patch ItemInput
	patch.Set("warranty", "")
	patch.Set("notes", "")
	patch.Set("serialNumber", "")
	require.NoError(t, patch.ApplyTo(item))

	assert.Nil(t, item.Warranty)
	assert.Empty(t, item.Notes)
	assert.Empty(t, item.SerialNumber)
}

func TestApplyToIsAtomic(t *testing.T) {
	item, err := NewItem(fullInput())
	require.NoError(t, err)

	var patch ItemInput
	patch.Set("name", "Desktop")
	patch.Set("room", "")
	err = patch.ApplyTo(item)
	require.Error(t, err)
	assert.Equal(t, "Laptop", item.Name)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-02-29", "2024-02-29", false},
		{"2024-03-01T23:30:00-05:00", "2024-03-02", false},
		{"03/01/2024", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(DateLayout))
		})
	}
}

func TestItemBlobKeys(t *testing.T) {
	item := &Item{
		ImageKey: "images/a.png",
		Attachments: []Attachment{
			{ID: "1", Key: "attachments/r.pdf"},
			{ID: "2", Key: "attachments/m.pdf"},
		},
	}
	assert.Equal(t, []string{"images/a.png", "attachments/r.pdf", "attachments/m.pdf"}, item.BlobKeys())

	cp := item.Clone()
	cp.Attachments[0].Key = "changed"
	assert.Equal(t, "attachments/r.pdf", item.Attachments[0].Key)
}

func ptr(s string) *string { return &s }
