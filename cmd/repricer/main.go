// cmd/repricer/main.go runs one simulation from the command line, for cron
// jobs and operators who prefer the terminal over the API. The run only
// simulates; apply stays a deliberate, separate action.
// Usage: go run ./cmd/repricer -ruleset <uuid> [-category papeterie] [-apply]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Neo52000/ma-papeterie-sub003/internal/config"
	"github.com/Neo52000/ma-papeterie-sub003/internal/dto"
	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/repository"
	"github.com/Neo52000/ma-papeterie-sub003/internal/service"
)

func main() {
	rulesetID := flag.String("ruleset", "", "ruleset UUID (required)")
	category := flag.String("category", "", "restrict the run to one category")
	apply := flag.Bool("apply", false, "apply the simulated prices immediately")
	actor := flag.String("actor", "repricer-cli", "name stamped into created_by / applied_by")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if *rulesetID == "" {
		fmt.Fprintln(os.Stderr, "usage: repricer -ruleset <uuid> [-category <name>] [-apply]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rulesetRepo := repository.NewRulesetRepository(db)
	productRepo := repository.NewProductRepository(db)
	simulationRepo := repository.NewSimulationRepository(db)
	priceLogRepo := repository.NewPriceLogRepository(db)

	simulationSvc := service.NewSimulationService(
		rulesetRepo, productRepo, simulationRepo, nil,
		cfg.SalesLookbackDays, cfg.PDFStoragePath,
	)

	req := dto.RunSimulationRequest{RulesetID: *rulesetID}
	if *category != "" {
		req.Category = category
	}

	ctx := context.Background()
	sim, err := simulationSvc.Simulate(ctx, req, *actor)
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}

	fmt.Printf("simulation %s : %d/%d produit(s) impacté(s), variation moyenne %s %%\n",
		sim.ID, sim.AffectedCount, sim.ProductCount, sim.AvgChangePct.StringFixed(2))
	for _, item := range sim.Items {
		marker := " "
		if item.BlockedByGuard {
			marker = "*"
		}
		fmt.Printf("  %s %-40s %8s -> %8s (%s%%)\n",
			marker, item.ProductName, item.OldPriceHT.StringFixed(2),
			item.NewPriceHT.StringFixed(2), item.PriceChangePct.StringFixed(2))
	}

	if !*apply {
		return
	}

	applySvc := service.NewApplyService(simulationRepo, productRepo, priceLogRepo, nil)
	simID := uuid.MustParse(sim.ID)
	result, err := applySvc.Apply(ctx, simID, *actor)
	if err != nil {
		log.Fatal().Err(err).Msg("apply failed")
	}
	fmt.Printf("appliqué : %d, ignoré : %d (sur %d)\n", result.AppliedCount, result.SkippedCount, result.Total)
}
