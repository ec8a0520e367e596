package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addressIn struct {
	PostalCode string `json:"postalCode" validate:"required,cep"`
	Number     *int   `json:"number" validate:"required,gte=0"`
}

type supplierIn struct {
	LegalName string     `json:"legalName" validate:"required,max=10"`
	TaxID     string     `json:"taxId" validate:"required,taxid"`
	Email     string     `json:"email" validate:"omitempty,email"`
	Address   *addressIn `json:"address" validate:"required"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()
	n := 10

	t.Run("valid", func(t *testing.T) {
		err := v.Struct(supplierIn{
			LegalName: "Acme",
			TaxID:     "11.222.333/0001-81",
			Address:   &addressIn{PostalCode: "01001-000", Number: &n},
		})
		assert.NoError(t, err)
	})

	t.Run("field paths use json names", func(t *testing.T) {
		neg := -1
		err := v.Struct(supplierIn{
			LegalName: "Acme Comercio Ltda",
			TaxID:     "11.222.333/0001-80",
			Email:     "not-an-email",
			Address:   &addressIn{PostalCode: "0100", Number: &neg},
		})
		require.Error(t, err)

		var verr *Error
		require.True(t, errors.As(err, &verr))

		got := map[string]string{}
		for _, f := range verr.Fields {
			got[f.Field] = f.Message
			assert.Equal(t, Code, f.Code)
		}
		assert.Equal(t, "CPF/CNPJ inválido.", got["taxId"])
		assert.Equal(t, "Email inválido.", got["email"])
		assert.Equal(t, "Formato de CEP inválido.", got["address.postalCode"])
		assert.Contains(t, got["legalName"], "10 caracteres")
		assert.Contains(t, got, "address.number")
	})

	t.Run("required nested", func(t *testing.T) {
		err := v.Struct(supplierIn{LegalName: "Acme", TaxID: "52998224725"})
		var verr *Error
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "address", verr.Fields[0].Field)
		assert.Equal(t, "Este campo é obrigatório.", verr.Fields[0].Message)
	})
}

func TestError(t *testing.T) {
	var e Error
	assert.NoError(t, e.OrNil())

	e.Add("legalName", "Já existe.")
	assert.Error(t, e.OrNil())
	assert.Equal(t, "validation failed: legalName: Já existe.", e.Error())

	single := NewError("taxId", "x")
	assert.Len(t, single.Fields, 1)
}

func TestError_HasAndMerge(t *testing.T) {
	e := NewError("legalName", "x")
	assert.True(t, e.Has("legalName"))
	assert.False(t, e.Has("taxId"))

	assert.NoError(t, e.Merge(NewError("taxId", "y")))
	assert.Len(t, e.Fields, 2)

	plain := errors.New("db down")
	assert.Equal(t, plain, e.Merge(plain))
	assert.NoError(t, e.Merge(nil))
}

func TestDecodeJSON(t *testing.T) {
	var in supplierIn

	require.NoError(t, DecodeJSON([]byte(`{"legalName":"Acme"}`), &in))
	assert.Equal(t, "Acme", in.LegalName)

	err := DecodeJSON([]byte(`{"address":{"number":"dez"}}`), &in)
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "address.number", verr.Fields[0].Field)

	err = DecodeJSON([]byte(`{"legalName":`), &in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, NonFieldErrors, verr.Fields[0].Field)

	err = DecodeJSON([]byte(`{"legalName":"Acme"} {"legalName":"Other"}`), &in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, NonFieldErrors, verr.Fields[0].Field)
}

func TestDecodeJSON_IgnoresReadOnlyFields(t *testing.T) {
	var in supplierIn

	err := DecodeJSON([]byte(`{"id":"0b6f","legalName":"Acme","createdAt":"2025-01-01T00:00:00Z"}`), &in)
	require.NoError(t, err)
	assert.Equal(t, "Acme", in.LegalName)
}
