// Command import loads the CNPq open-data CSV into Postgres. The file is
// semicolon separated; dates come as dd/mm/yyyy (optionally with a time
// part) and monetary values use Brazilian decimal commas.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dadosgov/cnpq-api/internal/models"
	"github.com/dadosgov/cnpq-api/pkg/config"
	"github.com/dadosgov/cnpq-api/pkg/database"
	"github.com/dadosgov/cnpq-api/pkg/logger"
)

const batchSize = 500

func main() {
	var (
		file     = flag.String("file", "", "path to the CNPq CSV file")
		truncate = flag.Bool("truncate", false, "delete existing records before importing")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	imp := &importer{db: db, logger: logr}
	stats, err := imp.Run(context.Background(), *file, *truncate)
	if err != nil {
		logr.Sugar().Fatalw("import failed", "error", err)
	}

	logr.Sugar().Infow("import finished",
		"rows", stats.Rows,
		"beneficiarios", stats.Beneficiaries,
		"instituicoes", stats.Institutions,
		"programas", stats.Programs,
		"pagamentos", stats.Payments,
		"erros", stats.Errors,
	)
}

// importStats counts what one run produced.
type importStats struct {
	Rows          int
	Beneficiaries int
	Institutions  int
	Programs      int
	Payments      int
	Errors        int
}

type importer struct {
	db     *sqlx.DB
	logger *zap.Logger

	// dedupe caches keyed the same way the source publishes records
	beneficiaries map[string]int64
	institutions  map[string]int64
	programs      map[string]int64

	rowInserts []rowInsert
}

// rowInsert tracks a dedupe cache entry and its stats counter made while
// importing one row, so a failed row can be unwound along with its
// savepoint.
type rowInsert struct {
	cache   map[string]int64
	key     string
	counter *int
}

// Run streams the CSV into the database. Inserts happen in batched
// transactions with a savepoint per row, so a malformed row is rolled
// back, counted and skipped without aborting its batch.
func (i *importer) Run(ctx context.Context, path string, truncate bool) (*importStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.TrimSpace(name)] = idx
	}

	if truncate {
		if err := i.truncate(ctx); err != nil {
			return nil, err
		}
	}

	i.beneficiaries = make(map[string]int64)
	i.institutions = make(map[string]int64)
	i.programs = make(map[string]int64)

	stats := &importStats{}

	tx, err := i.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Errors++
			continue
		}
		stats.Rows++

		if _, err := tx.ExecContext(ctx, "SAVEPOINT import_row"); err != nil {
			return nil, fmt.Errorf("savepoint: %w", err)
		}
		i.rowInserts = i.rowInserts[:0]
		if err := i.importRow(ctx, tx, columns, record, stats); err != nil {
			i.logger.Warn("row skipped", zap.Int("row", stats.Rows), zap.Error(err))
			stats.Errors++
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT import_row"); rbErr != nil {
				return nil, fmt.Errorf("rollback row: %w", rbErr)
			}
			i.unwindRow()
		}

		if stats.Rows%batchSize == 0 {
			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("commit batch: %w", err)
			}
			i.logger.Info("batch committed", zap.Int("rows", stats.Rows))
			tx, err = i.db.BeginTxx(ctx, nil)
			if err != nil {
				return nil, fmt.Errorf("begin tx: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit final batch: %w", err)
	}
	return stats, nil
}

// unwindRow drops the dedupe entries and counters of a rolled-back row so
// a later row re-inserts the same records.
func (i *importer) unwindRow() {
	for _, ins := range i.rowInserts {
		delete(ins.cache, ins.key)
		*ins.counter--
	}
	i.rowInserts = i.rowInserts[:0]
}

func (i *importer) truncate(ctx context.Context) error {
	for _, table := range []string{"pagamento", "beneficiario", "instituicao", "programa"} {
		if _, err := i.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

func (i *importer) importRow(ctx context.Context, tx *sqlx.Tx, columns map[string]int, record []string, stats *importStats) error {
	get := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	cpf := get("CPF ANONIMIZADO")
	beneficiaryID, created, err := i.upsertBeneficiary(ctx, tx, models.Beneficiary{
		Nome:           get("BENEFICIARIO"),
		CPFAnonimizado: cpf,
		CategoriaNivel: get("CATEGORIA_NIVEL"),
	})
	if err != nil {
		return err
	}
	if created {
		stats.Beneficiaries++
		i.rowInserts = append(i.rowInserts, rowInsert{i.beneficiaries, cpf, &stats.Beneficiaries})
	}

	inst := models.Institution{
		Nome:   get("INSTITUICAO_DESTINO"),
		Sigla:  get("SIGLA_INSTITUICAO_DESTINO"),
		Cidade: get("CIDADE_DESTINO"),
		UF:     get("SIGLA_UF_DESTINO"),
		Pais:   get("PAIS_DESTINO"),
	}
	if inst.Pais == "" {
		inst.Pais = "BRA - Brasil"
	}
	institutionID, created, err := i.upsertInstitution(ctx, tx, inst)
	if err != nil {
		return err
	}
	if created {
		stats.Institutions++
		i.rowInserts = append(i.rowInserts, rowInsert{i.institutions, institutionKey(inst), &stats.Institutions})
	}

	prog := models.Program{
		NomeChamada:  get("NOME_CHAMADA"),
		ProgramaCNPq: get("PROGRAMA_CNPQ"),
		GrandeArea:   get("GRANDE_AREA"),
		Area:         get("AREA"),
		Subarea:      get("SUBAREA"),
	}
	programID, created, err := i.upsertProgram(ctx, tx, prog)
	if err != nil {
		return err
	}
	if created {
		stats.Programs++
		i.rowInserts = append(i.rowInserts, rowInsert{i.programs, programKey(prog), &stats.Programs})
	}

	if beneficiaryID == 0 || institutionID == 0 || programID == 0 {
		return nil
	}

	year, err := strconv.Atoi(get("ANO_REFERENCIA"))
	if err != nil {
		year = time.Now().Year()
	}

	payment := models.Payment{
		AnoReferencia:  year,
		Processo:       get("PROCESSO"),
		Modalidade:     get("MODALIDADE"),
		LinhaFomento:   get("LINHA_FOMENTO"),
		ValorPago:      parseValue(get("VALOR_PAGO")),
		DataInicio:     parseDate(get("DATA_INICIO_PROCESSO")),
		DataFim:        parseDate(get("DATA_TERMINO_PROCESSO")),
		TituloProjeto:  get("TITULO_PROJETO"),
		FKBeneficiario: beneficiaryID,
		FKInstituicao:  institutionID,
		FKPrograma:     programID,
	}

	const q = `INSERT INTO pagamento (ano_referencia, processo, modalidade, linha_fomento, valor_pago, data_inicio, data_fim, titulo_projeto, fk_beneficiario, fk_instituicao, fk_programa)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := tx.ExecContext(ctx, q,
		payment.AnoReferencia, payment.Processo, payment.Modalidade, payment.LinhaFomento,
		payment.ValorPago, payment.DataInicio, payment.DataFim, payment.TituloProjeto,
		payment.FKBeneficiario, payment.FKInstituicao, payment.FKPrograma,
	); err != nil {
		return fmt.Errorf("insert pagamento: %w", err)
	}
	stats.Payments++
	return nil
}

func (i *importer) upsertBeneficiary(ctx context.Context, tx *sqlx.Tx, b models.Beneficiary) (int64, bool, error) {
	if b.CPFAnonimizado == "" {
		return 0, false, nil
	}
	if id, ok := i.beneficiaries[b.CPFAnonimizado]; ok {
		return id, false, nil
	}
	var id int64
	const q = `INSERT INTO beneficiario (nome, cpf_anonimizado, categoria_nivel) VALUES ($1, $2, $3) RETURNING id`
	if err := tx.QueryRowxContext(ctx, q, b.Nome, b.CPFAnonimizado, b.CategoriaNivel).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("insert beneficiario: %w", err)
	}
	i.beneficiaries[b.CPFAnonimizado] = id
	return id, true, nil
}

func (i *importer) upsertInstitution(ctx context.Context, tx *sqlx.Tx, inst models.Institution) (int64, bool, error) {
	if inst.Nome == "" {
		return 0, false, nil
	}
	key := institutionKey(inst)
	if id, ok := i.institutions[key]; ok {
		return id, false, nil
	}
	var id int64
	const q = `INSERT INTO instituicao (nome, sigla, cidade, uf, pais) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := tx.QueryRowxContext(ctx, q, inst.Nome, inst.Sigla, inst.Cidade, inst.UF, inst.Pais).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("insert instituicao: %w", err)
	}
	i.institutions[key] = id
	return id, true, nil
}

func (i *importer) upsertProgram(ctx context.Context, tx *sqlx.Tx, p models.Program) (int64, bool, error) {
	if p.ProgramaCNPq == "" {
		return 0, false, nil
	}
	key := programKey(p)
	if id, ok := i.programs[key]; ok {
		return id, false, nil
	}
	var id int64
	const q = `INSERT INTO programa (nome_chamada, programa_cnpq, grande_area, area, subarea) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := tx.QueryRowxContext(ctx, q, p.NomeChamada, p.ProgramaCNPq, p.GrandeArea, p.Area, p.Subarea).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("insert programa: %w", err)
	}
	i.programs[key] = id
	return id, true, nil
}

func institutionKey(inst models.Institution) string {
	return inst.Nome + "_" + inst.Sigla + "_" + inst.UF
}

func programKey(p models.Program) string {
	return p.ProgramaCNPq + "_" + p.GrandeArea + "_" + p.Area
}

// parseDate accepts "dd/mm/yyyy" with an optional trailing time part, or
// ISO "yyyy-mm-dd". Anything else means no date.
func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	datePart := strings.SplitN(raw, " ", 2)[0]
	if t, err := time.Parse("02/01/2006", datePart); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

// parseValue converts a Brazilian-formatted amount ("1.234,56") to a
// float. Unparseable values become zero.
func parseValue(raw string) float64 {
	if raw == "" {
		return 0
	}
	clean := strings.ReplaceAll(raw, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return v
}
