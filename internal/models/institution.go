package models

import "github.com/dadosgov/cnpq-api/internal/query"

// Institution is a research institution hosting funded projects.
type Institution struct {
	ID     int64  `db:"id" json:"id"`
	Nome   string `db:"nome" json:"nome"`
	Sigla  string `db:"sigla" json:"sigla"`
	Cidade string `db:"cidade" json:"cidade"`
	UF     string `db:"uf" json:"uf"`
	Pais   string `db:"pais" json:"pais"`
}

// InstitutionInput is the create/update payload.
type InstitutionInput struct {
	Nome   string `json:"nome" validate:"required"`
	Sigla  string `json:"sigla"`
	Cidade string `json:"cidade"`
	UF     string `json:"uf" validate:"omitempty,len=2"`
	Pais   string `json:"pais"`
}

// InstitutionStats aggregates institutions by location.
type InstitutionStats struct {
	Total  int                     `json:"total_instituicoes"`
	ByUF   []InstitutionGroupCount `json:"por_uf"`
	ByPais []InstitutionGroupCount `json:"por_pais"`
}

// InstitutionGroupCount is one GROUP BY bucket.
type InstitutionGroupCount struct {
	Group string `db:"grupo" json:"grupo"`
	Total int    `db:"total" json:"total"`
}

// InstitutionCatalog registers the filterable fields of institutions.
var InstitutionCatalog = query.Catalog{
	Table:      "instituicao",
	PrimaryKey: "id",
	Fields: []query.Field{
		{Name: "id", Type: query.FieldInteger},
		{Name: "nome", Type: query.FieldText, Searchable: true},
		{Name: "sigla", Type: query.FieldText, Searchable: true},
		{Name: "cidade", Type: query.FieldText, Searchable: true},
		{Name: "uf", Type: query.FieldText, Searchable: true},
		{Name: "pais", Type: query.FieldText, Searchable: true},
	},
}
