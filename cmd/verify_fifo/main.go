// verify_fifo audita el libro de lotes contra la base de datos: conservación de saldos,
// cierre de lotes agotados y orden FIFO de las líneas de cada retiro.
//
// Uso: go run ./cmd/verify_fifo [-company <uuid>] [-timeout 5m]
// Toma la conexión de las mismas variables que la API (DATABASE_URL, DB_HOST, ...).
// Sale con código 1 si encuentra hallazgos y 2 si no pudo auditar.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jhoicas/Rentabodega-api/internal/application/reporting"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Rentabodega-api/pkg/config"
	"github.com/jhoicas/Rentabodega-api/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "auditar solo esta empresa (vacío = todas)")
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo de la auditoría")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(2)
	}
	log := logger.NewWithWriter(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, "verify_fifo")
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		os.Exit(2)
	}
	defer pool.Close()

	auditor := reporting.NewFIFOAuditor(
		postgres.NewCompanyRepository(pool),
		postgres.NewLotRepository(pool),
		postgres.NewWithdrawalRepository(pool),
		log.Zerolog(),
	)
	report, err := auditor.AuditAll(ctx, *companyID)
	if err != nil {
		log.Error().Err(err).Msg("auditoría interrumpida")
		pool.Close()
		os.Exit(2)
	}

	fmt.Printf("Empresas: %d  Lotes: %d  Retiros: %d\n", report.Companies, report.Lots, report.Withdrawals)
	if report.Clean() {
		fmt.Println("OK: sin hallazgos")
		return
	}

	ids := make([]string, 0, len(report.Violations))
	for id := range report.Violations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	total := 0
	for _, id := range ids {
		fmt.Printf("\nEmpresa %s\n", id)
		for _, v := range report.Violations[id] {
			fmt.Printf("  %s\n", v)
			total++
		}
	}
	fmt.Printf("\n%d hallazgos\n", total)
	pool.Close()
	os.Exit(1)
}
