package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"plantfinder/internal/catalog"
	"plantfinder/pkg/database"
	"plantfinder/pkg/logger"
	"plantfinder/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	var (
		in  = flag.String("in", cfg.CatalogPath, "input JSON dataset (empty = embedded dataset)")
		out = flag.String("db", cfg.CatalogDB, "output SQLite catalog (empty = ~/.plantfinder/catalog.db)")
	)
	flag.Parse()

	log, err := logger.New(cfg.LogLevel, "console", "import-catalog")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, path, err := importCatalog(ctx, *in, *out)
	if err != nil {
		log.Fatal("import catalog failed", zap.Error(err))
	}
	log.Info("imported catalog", zap.Int("plants", n), zap.String("db", path))
}

func importCatalog(ctx context.Context, in, out string) (int, string, error) {
	var (
		records []catalog.Record
		err     error
	)
	if in == "" {
		records, err = catalog.Embedded()
	} else {
		records, err = catalog.LoadFile(in)
	}
	if err != nil {
		return 0, "", err
	}

	dbCfg := database.DefaultConfig()
	if out != "" {
		dbCfg.Path = out
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		return 0, "", err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return 0, "", fmt.Errorf("db migrate: %w", err)
	}
	if err := catalog.NewStore(db).Save(ctx, records); err != nil {
		return 0, "", err
	}
	return len(records), dbCfg.Path, nil
}
