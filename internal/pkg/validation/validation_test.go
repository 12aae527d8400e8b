package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `json:"nama" validate:"required,min=2,max=100"`
	Phone  string `json:"telp" validate:"required,telp"`
	Slug   string `json:"name" validate:"omitempty,slug"`
	Year   *int   `json:"expiryYear" validate:"omitempty,notpastyear"`
	Last4  string `json:"last4" validate:"omitempty,len=4,numeric"`
	Choice string `json:"type" validate:"omitempty,oneof=A B"`
}

func TestIsPhone(t *testing.T) {
	valid := []string{"081234567890", "+6281234567890", "6281234567890", "0812345678"}
	invalid := []string{"", "12345", "+4915112345678", "08123", "0812345678901234", "0812-3456-7890"}

	for _, p := range valid {
		assert.True(t, IsPhone(p), p)
	}
	for _, p := range invalid {
		assert.False(t, IsPhone(p), p)
	}
}

func TestStructValid(t *testing.T) {
	year := time.Now().Year()
	s := sample{Name: "John", Phone: "081234567890", Slug: "stripe", Year: &year, Last4: "4242", Choice: "A"}
	assert.NoError(t, Struct(s))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	past := time.Now().Year() - 1
	s := sample{Name: "J", Phone: "123", Slug: "Not A Slug", Year: &past, Last4: "12", Choice: "C"}

	err := Struct(s)
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "must be at least 2 characters long", fields["nama"])
	assert.Contains(t, fields["telp"], "invalid phone number")
	assert.Contains(t, fields["name"], "slug")
	assert.Equal(t, "must not be in the past", fields["expiryYear"])
	assert.Equal(t, "must be exactly 4 characters long", fields["last4"])
	assert.Equal(t, "must be one of: A, B", fields["type"])
	assert.Contains(t, err.Error(), "Validation failed: ")
}

func TestStructMissingRequired(t *testing.T) {
	err := Struct(sample{})
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.Equal(t, "is required", verr.Fields[0].Message)
}
