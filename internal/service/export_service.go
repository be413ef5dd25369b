package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/query"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
	"github.com/dadosgov/cnpq-api/pkg/export"
)

// ExportFormat selects the rendered document type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ParseExportFormat maps the format query parameter onto a known format.
// Empty means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(raw) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportPDF:
		return ExportPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// ContentType returns the MIME type of the rendered document.
func (f ExportFormat) ContentType() string {
	if f == ExportPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// maxExportRows bounds how many records a single export may pull.
const maxExportRows = 10000

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders filtered record listings into downloadable
// documents. Filters reuse the same grammar as the list endpoints.
type ExportService struct {
	beneficiaries BeneficiaryStore
	institutions  InstitutionStore
	programs      ProgramStore
	payments      PaymentStore
	csv           csvRenderer
	pdf           pdfRenderer
	logger        *zap.Logger
}

// NewExportService constructs an ExportService with the default renderers.
func NewExportService(beneficiaries BeneficiaryStore, institutions InstitutionStore, programs ProgramStore, payments PaymentStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		beneficiaries: beneficiaries,
		institutions:  institutions,
		programs:      programs,
		payments:      payments,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		logger:        logger,
	}
}

// ExportBeneficiaries renders the beneficiary listing.
func (s *ExportService) ExportBeneficiaries(ctx context.Context, filters query.Filters, format ExportFormat) ([]byte, error) {
	dataset := export.Dataset{Headers: []string{"id", "nome", "cpf_anonimizado", "categoria_nivel"}}
	err := collectPages(ctx, filters, func(ctx context.Context, filters query.Filters, req query.PageRequest) (int, query.Pagination, error) {
		items, pagination, err := s.beneficiaries.List(ctx, filters, req)
		for _, b := range items {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id":              strconv.FormatInt(b.ID, 10),
				"nome":            b.Nome,
				"cpf_anonimizado": b.CPFAnonimizado,
				"categoria_nivel": b.CategoriaNivel,
			})
		}
		return len(items), pagination, err
	})
	if err != nil {
		return nil, err
	}
	return s.render(dataset, format, "Beneficiarios CNPq")
}

// ExportInstitutions renders the institution listing.
func (s *ExportService) ExportInstitutions(ctx context.Context, filters query.Filters, format ExportFormat) ([]byte, error) {
	dataset := export.Dataset{Headers: []string{"id", "nome", "sigla", "cidade", "uf", "pais"}}
	err := collectPages(ctx, filters, func(ctx context.Context, filters query.Filters, req query.PageRequest) (int, query.Pagination, error) {
		items, pagination, err := s.institutions.List(ctx, filters, req)
		for _, inst := range items {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id":     strconv.FormatInt(inst.ID, 10),
				"nome":   inst.Nome,
				"sigla":  inst.Sigla,
				"cidade": inst.Cidade,
				"uf":     inst.UF,
				"pais":   inst.Pais,
			})
		}
		return len(items), pagination, err
	})
	if err != nil {
		return nil, err
	}
	return s.render(dataset, format, "Instituicoes CNPq")
}

// ExportPrograms renders the program listing.
func (s *ExportService) ExportPrograms(ctx context.Context, filters query.Filters, format ExportFormat) ([]byte, error) {
	dataset := export.Dataset{Headers: []string{"id", "nome_chamada", "programa_cnpq", "grande_area", "area", "subarea"}}
	err := collectPages(ctx, filters, func(ctx context.Context, filters query.Filters, req query.PageRequest) (int, query.Pagination, error) {
		items, pagination, err := s.programs.List(ctx, filters, req)
		for _, p := range items {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id":            strconv.FormatInt(p.ID, 10),
				"nome_chamada":  p.NomeChamada,
				"programa_cnpq": p.ProgramaCNPq,
				"grande_area":   p.GrandeArea,
				"area":          p.Area,
				"subarea":       p.Subarea,
			})
		}
		return len(items), pagination, err
	})
	if err != nil {
		return nil, err
	}
	return s.render(dataset, format, "Programas CNPq")
}

// ExportPayments renders the payment listing. Monetary values use the
// Brazilian currency format.
func (s *ExportService) ExportPayments(ctx context.Context, filters query.Filters, format ExportFormat) ([]byte, error) {
	dataset := export.Dataset{Headers: []string{"id", "ano_referencia", "processo", "modalidade", "linha_fomento", "valor_pago", "data_inicio", "data_fim", "titulo_projeto"}}
	err := collectPages(ctx, filters, func(ctx context.Context, filters query.Filters, req query.PageRequest) (int, query.Pagination, error) {
		items, pagination, err := s.payments.List(ctx, filters, req)
		for _, p := range items {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"id":             strconv.FormatInt(p.ID, 10),
				"ano_referencia": strconv.Itoa(p.AnoReferencia),
				"processo":       p.Processo,
				"modalidade":     p.Modalidade,
				"linha_fomento":  p.LinhaFomento,
				"valor_pago":     export.FormatCurrency(p.ValorPago),
				"data_inicio":    formatDate(p.DataInicio),
				"data_fim":       formatDate(p.DataFim),
				"titulo_projeto": p.TituloProjeto,
			})
		}
		return len(items), pagination, err
	})
	if err != nil {
		return nil, err
	}
	return s.render(dataset, format, "Pagamentos CNPq")
}

func (s *ExportService) render(dataset export.Dataset, format ExportFormat, title string) ([]byte, error) {
	if format == ExportPDF {
		return s.pdf.Render(dataset, title)
	}
	return s.csv.Render(dataset)
}

// collectPages walks the listing page by page until it is exhausted or the
// export cap is hit.
func collectPages(ctx context.Context, filters query.Filters, fetch func(ctx context.Context, filters query.Filters, req query.PageRequest) (int, query.Pagination, error)) error {
	collected := 0
	for page := 1; ; page++ {
		count, pagination, err := fetch(ctx, filters, query.PageRequest{Page: page, Size: query.MaxPageSize})
		if err != nil {
			return err
		}
		collected += count
		if !pagination.HasNext || count == 0 || collected >= maxExportRows {
			return nil
		}
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}
