package models

import "github.com/dadosgov/cnpq-api/internal/query"

// Program is a CNPq funding call / program line.
type Program struct {
	ID           int64  `db:"id" json:"id"`
	NomeChamada  string `db:"nome_chamada" json:"nome_chamada"`
	ProgramaCNPq string `db:"programa_cnpq" json:"programa_cnpq"`
	GrandeArea   string `db:"grande_area" json:"grande_area"`
	Area         string `db:"area" json:"area"`
	Subarea      string `db:"subarea" json:"subarea"`
}

// ProgramInput is the create/update payload.
type ProgramInput struct {
	NomeChamada  string `json:"nome_chamada" validate:"required"`
	ProgramaCNPq string `json:"programa_cnpq"`
	GrandeArea   string `json:"grande_area"`
	Area         string `json:"area"`
	Subarea      string `json:"subarea"`
}

// ProgramAreaStats aggregates programs by knowledge area.
type ProgramAreaStats struct {
	TotalPrograms int                `json:"total_programas"`
	TotalAreas    int                `json:"total_areas"`
	TotalSubareas int                `json:"total_subareas"`
	ByGrandeArea  []ProgramAreaCount `json:"por_grande_area"`
}

// ProgramAreaCount is one GROUP BY bucket.
type ProgramAreaCount struct {
	GrandeArea string `db:"grande_area" json:"grande_area"`
	Total      int    `db:"total" json:"total_programas"`
}

// ProgramCatalog registers the filterable fields of programs.
var ProgramCatalog = query.Catalog{
	Table:      "programa",
	PrimaryKey: "id",
	Fields: []query.Field{
		{Name: "id", Type: query.FieldInteger},
		{Name: "nome_chamada", Type: query.FieldText, Searchable: true},
		{Name: "programa_cnpq", Type: query.FieldText, Searchable: true},
		{Name: "grande_area", Type: query.FieldText, Searchable: true},
		{Name: "area", Type: query.FieldText, Searchable: true},
		{Name: "subarea", Type: query.FieldText, Searchable: true},
	},
}
