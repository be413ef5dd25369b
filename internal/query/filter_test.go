package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = Catalog{
	Table:      "beneficiario",
	PrimaryKey: "id",
	Fields: []Field{
		{Name: "id", Type: FieldInteger},
		{Name: "nome", Type: FieldText, Searchable: true},
		{Name: "cpf_anonimizado", Type: FieldText, Searchable: true},
		{Name: "categoria_nivel", Type: FieldText, Searchable: true},
		{Name: "valor", Type: FieldReal},
	},
}

func TestBuildEmptyFilters(t *testing.T) {
	p := Build(testCatalog, nil)
	assert.Equal(t, "", p.Where())
	assert.Empty(t, p.Args())

	p = Build(testCatalog, Filters{})
	assert.Equal(t, 0, p.Len())
}

func TestBuildDropsEmptyValues(t *testing.T) {
	p := Build(testCatalog, Filters{
		"nome":  "",
		"valor": nil,
	})
	assert.Equal(t, "", p.Where())
	assert.Empty(t, p.Args())
}

func TestBuildDropsUnknownFields(t *testing.T) {
	p := Build(testCatalog, Filters{
		"telefone":     "999",
		"telefone_gte": "1",
		"_like":        "x",
	})
	assert.Equal(t, 0, p.Len())
}

func TestBuildEqualityAndOperators(t *testing.T) {
	p := Build(testCatalog, Filters{
		"valor_gte": "100",
		"valor_lte": "200",
	})
	require.Equal(t, 2, p.Len())
	assert.Equal(t, " WHERE valor >= $1 AND valor <= $2", p.Where())
	assert.Equal(t, []interface{}{"100", "200"}, p.Args())
}

func TestBuildLikeLowercasesAndWraps(t *testing.T) {
	p := Build(testCatalog, Filters{"nome_like": "Silva"})
	assert.Equal(t, " WHERE LOWER(nome) LIKE $1", p.Where())
	assert.Equal(t, []interface{}{"%silva%"}, p.Args())
}

func TestBuildWholeKeyWinsOverOperatorSplit(t *testing.T) {
	// categoria_nivel contains an underscore; it must resolve as a field
	// named categoria_nivel, not as field "categoria" with operator
	// "nivel".
	p := Build(testCatalog, Filters{"categoria_nivel": "1A"})
	assert.Equal(t, " WHERE categoria_nivel = $1", p.Where())
	assert.Equal(t, []interface{}{"1A"}, p.Args())
}

func TestBuildUnknownOperatorCoercesToEq(t *testing.T) {
	p := Build(testCatalog, Filters{"valor_between": "50"})
	assert.Equal(t, " WHERE valor = $1", p.Where())
}

func TestBuildSearchSpansSearchableFields(t *testing.T) {
	p := Build(testCatalog, Filters{SearchKey: "Maria"})
	require.Equal(t, 1, p.Len())
	assert.Equal(t,
		" WHERE (LOWER(nome) LIKE $1 OR LOWER(cpf_anonimizado) LIKE $1 OR LOWER(categoria_nivel) LIKE $1)",
		p.Where())
	assert.Equal(t, []interface{}{"%maria%"}, p.Args())
}

func TestBuildSearchWithoutSearchableFieldsIsNoop(t *testing.T) {
	numeric := Catalog{
		Table:      "t",
		PrimaryKey: "id",
		Fields:     []Field{{Name: "id", Type: FieldInteger}},
	}
	p := Build(numeric, Filters{SearchKey: "x"})
	assert.Equal(t, 0, p.Len())
}

func TestBuildDeterministicPlaceholderNumbering(t *testing.T) {
	p := Build(testCatalog, Filters{
		"valor_gte": "10",
		"nome_like": "ana",
		SearchKey:   "sp",
	})
	// keys are sorted, so nome_like < search < valor_gte
	assert.Equal(t,
		" WHERE LOWER(nome) LIKE $1 AND (LOWER(nome) LIKE $2 OR LOWER(cpf_anonimizado) LIKE $2 OR LOWER(categoria_nivel) LIKE $2) AND valor >= $3",
		p.Where())
	assert.Equal(t, []interface{}{"%ana%", "%sp%", "10"}, p.Args())
}

func TestResolveExactFieldUsesEq(t *testing.T) {
	field, op, ok := resolve(testCatalog, "nome")
	require.True(t, ok)
	assert.Equal(t, "nome", field.Name)
	assert.Equal(t, "eq", op)
}
