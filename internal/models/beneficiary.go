package models

import "github.com/dadosgov/cnpq-api/internal/query"

// Beneficiary is a grant recipient. Column names follow the CNPq open
// dataset.
type Beneficiary struct {
	ID             int64  `db:"id" json:"id"`
	Nome           string `db:"nome" json:"nome"`
	CPFAnonimizado string `db:"cpf_anonimizado" json:"cpf_anonimizado"`
	CategoriaNivel string `db:"categoria_nivel" json:"categoria_nivel"`
}

// BeneficiaryInput is the create/update payload.
type BeneficiaryInput struct {
	Nome           string `json:"nome" validate:"required"`
	CPFAnonimizado string `json:"cpf_anonimizado" validate:"required"`
	CategoriaNivel string `json:"categoria_nivel"`
}

// BeneficiaryCatalog registers the filterable fields of beneficiaries.
var BeneficiaryCatalog = query.Catalog{
	Table:      "beneficiario",
	PrimaryKey: "id",
	Fields: []query.Field{
		{Name: "id", Type: query.FieldInteger},
		{Name: "nome", Type: query.FieldText, Searchable: true},
		{Name: "cpf_anonimizado", Type: query.FieldText, Searchable: true},
		{Name: "categoria_nivel", Type: query.FieldText, Searchable: true},
	},
}
