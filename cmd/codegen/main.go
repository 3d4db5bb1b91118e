// Command codegen writes the weight-code catalog of the configured store to CSV,
// one code per row.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"EventWeights/internal/di"
	"EventWeights/internal/domain/models"
	"EventWeights/internal/services/features"
	"EventWeights/pkg/config"
	applogger "EventWeights/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	out := flag.String("out", "weights_table.csv", "output CSV path, - for stdout")
	flag.Parse()

	if err := run(*configPath, *out); err != nil {
		log.Fatalf("codegen: %v", err)
	}
}

// run loads the definitions and writes the catalog; every opened resource is
// closed before it returns.
func run(configPath, out string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	src, err := di.ProvideSource(cfg, l)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer src.Close()

	defs, err := src.LoadEventDefinitions(context.Background())
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	w := io.Writer(os.Stdout)
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	n, err := writeCatalog(w, defs)
	if err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	l.Info("catalog written",
		applogger.String("out", out),
		applogger.Int("events", len(defs)),
		applogger.Int("codes", n),
	)
	return nil
}

// writeCatalog renders the code space of defs in ascending event id order.
func writeCatalog(w io.Writer, defs []models.EventDefinition) (int, error) {
	sorted := make([]models.EventDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	cw := csv.NewWriter(w)
	codes := features.CodeStrings(features.CodeSpace(sorted))
	for _, c := range codes {
		if err := cw.Write([]string{c}); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return len(codes), cw.Error()
}
