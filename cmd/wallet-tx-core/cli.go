package main

import (
	"context"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	txcore "github.com/walletsuite/wallet-tx-core"
	"github.com/walletsuite/wallet-tx-core/common/cliapp"
	"github.com/walletsuite/wallet-tx-core/config"
	"github.com/walletsuite/wallet-tx-core/database"
	"github.com/walletsuite/wallet-tx-core/flags"
)

func NewCli(GitCommit string, GitDate string) *cli.App {
	return &cli.App{
		Version:              "1.0.0",
		Description:          "Transaction request lifecycle and safety check service for wallet backends",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:        "watch",
				Flags:       flags.Flags,
				Description: "Run the transaction watcher and fee forecast service",
				Action:      cliapp.LifecycleCmd(runWatch),
			},
			{
				Name:        "migrate",
				Flags:       flags.Flags,
				Description: "Run database migrations",
				Action:      runMigrations,
			},
		},
	}
}

func runWatch(ctx *cli.Context, shutdown context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	log.Info("exec wallet tx core")
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Error("failed to load config", "err", err)
		return nil, err
	}
	return txcore.NewTxCore(ctx.Context, &cfg, shutdown)
}

func runMigrations(ctx *cli.Context) error {
	log.Info("running migrations...")
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Error("failed to load config", "err", err)
		return err
	}
	db, err := database.NewDB(ctx.Context, cfg.MasterDB)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "err", err)
		}
	}()
	return db.ExecuteSQLMigration(cfg.Migrations)
}
