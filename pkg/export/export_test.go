package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatCurrency(0))
	assert.Equal(t, "R$ 600,00", FormatCurrency(600))
	assert.Equal(t, "R$ 5.240,00", FormatCurrency(5240))
	assert.Equal(t, "R$ 1.234.567,89", FormatCurrency(1234567.89))
	assert.Equal(t, "-R$ 1.500,50", FormatCurrency(-1500.5))
}

func TestCSVRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"id", "nome"},
		Rows: []map[string]string{
			{"id": "1", "nome": "Ana"},
			{"id": "2", "nome": "José, Maria"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "id,nome\n1,Ana\n2,\"José, Maria\"\n", string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"id", "valor"},
		Rows:    []map[string]string{{"id": "1", "valor": "R$ 100,00"}},
	}

	out, err := NewPDFExporter().Render(data, "Pagamentos")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}
