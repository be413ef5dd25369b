package models

import (
	"time"

	"github.com/dadosgov/cnpq-api/internal/query"
)

// Payment is one grant disbursement, linked to a beneficiary, an
// institution and a program.
type Payment struct {
	ID             int64      `db:"id" json:"id"`
	AnoReferencia  int        `db:"ano_referencia" json:"ano_referencia"`
	Processo       string     `db:"processo" json:"processo"`
	Modalidade     string     `db:"modalidade" json:"modalidade"`
	LinhaFomento   string     `db:"linha_fomento" json:"linha_fomento"`
	ValorPago      float64    `db:"valor_pago" json:"valor_pago"`
	DataInicio     *time.Time `db:"data_inicio" json:"data_inicio,omitempty"`
	DataFim        *time.Time `db:"data_fim" json:"data_fim,omitempty"`
	TituloProjeto  string     `db:"titulo_projeto" json:"titulo_projeto"`
	FKBeneficiario int64      `db:"fk_beneficiario" json:"fk_beneficiario"`
	FKInstituicao  int64      `db:"fk_instituicao" json:"fk_instituicao"`
	FKPrograma     int64      `db:"fk_programa" json:"fk_programa"`
}

// PaymentInput is the create/update payload.
type PaymentInput struct {
	AnoReferencia  int        `json:"ano_referencia" validate:"required,gte=1950"`
	Processo       string     `json:"processo"`
	Modalidade     string     `json:"modalidade"`
	LinhaFomento   string     `json:"linha_fomento"`
	ValorPago      float64    `json:"valor_pago" validate:"gte=0"`
	DataInicio     *time.Time `json:"data_inicio"`
	DataFim        *time.Time `json:"data_fim"`
	TituloProjeto  string     `json:"titulo_projeto"`
	FKBeneficiario int64      `json:"fk_beneficiario" validate:"required"`
	FKInstituicao  int64      `json:"fk_instituicao" validate:"required"`
	FKPrograma     int64      `json:"fk_programa" validate:"required"`
}

// PaymentStats summarises disbursements.
type PaymentStats struct {
	Summary      PaymentSummary       `json:"resumo"`
	ByModalidade []PaymentBucketStats `json:"por_modalidade"`
	ByYear       []PaymentYearStats   `json:"por_ano"`
}

// PaymentSummary carries global totals.
type PaymentSummary struct {
	TotalPayments int     `db:"total" json:"total_pagamentos"`
	TotalValue    float64 `db:"valor_total" json:"valor_total"`
	AverageValue  float64 `db:"valor_medio" json:"valor_medio"`
}

// PaymentBucketStats is one modality bucket.
type PaymentBucketStats struct {
	Modalidade    string  `db:"modalidade" json:"modalidade"`
	TotalPayments int     `db:"total" json:"total_pagamentos"`
	TotalValue    float64 `db:"valor_total" json:"valor_total"`
}

// PaymentYearStats is one reference-year bucket.
type PaymentYearStats struct {
	Year          int     `db:"ano_referencia" json:"ano"`
	TotalPayments int     `db:"total" json:"total_pagamentos"`
	TotalValue    float64 `db:"valor_total" json:"valor_total"`
}

// PaymentCatalog registers the filterable fields of payments. Value and
// date fields are orderable, so callers can express ranges with the
// gte/lte operator suffixes (valor_pago_gte, data_inicio_lte, ...).
var PaymentCatalog = query.Catalog{
	Table:      "pagamento",
	PrimaryKey: "id",
	Fields: []query.Field{
		{Name: "id", Type: query.FieldInteger},
		{Name: "ano_referencia", Type: query.FieldInteger},
		{Name: "processo", Type: query.FieldText, Searchable: true},
		{Name: "modalidade", Type: query.FieldText, Searchable: true},
		{Name: "linha_fomento", Type: query.FieldText, Searchable: true},
		{Name: "valor_pago", Type: query.FieldReal},
		{Name: "data_inicio", Type: query.FieldDate},
		{Name: "data_fim", Type: query.FieldDate},
		{Name: "titulo_projeto", Type: query.FieldText, Searchable: true},
		{Name: "fk_beneficiario", Type: query.FieldForeignKey},
		{Name: "fk_instituicao", Type: query.FieldForeignKey},
		{Name: "fk_programa", Type: query.FieldForeignKey},
	},
}
