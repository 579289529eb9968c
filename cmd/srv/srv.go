package main

import (
	"context"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/trackpredict/backend/config"
	"github.com/trackpredict/backend/internal/domain"
	"github.com/trackpredict/backend/internal/entity"
	"github.com/trackpredict/backend/internal/repository"
	"github.com/trackpredict/backend/pkg/logger"
	"github.com/trackpredict/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context

	app *cli.App

	playerRepo     repository.PlayerRepository
	trackRepo      repository.TrackRepository
	communityRepo  repository.CommunityRepository
	memberRepo     repository.MemberRepository
	predictionRepo repository.PredictionRepository
	betRepo        repository.BetRepository
	recordRepo     repository.RecordRepository

	predictionDomain domain.PredictionDomain
}

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "TrackPredict"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "The path of the configuration file",
			Value: "config.toml",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the settlement scheduler",
			Category:    "Worker",
			Description: `Periodically settles predictions whose window has elapsed.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
			Description: `Creates or updates all tables, then exits.`,
		},
	}

	s.app = app
}

func (s *srv) loadContext(cliCtx *cli.Context) {
	cfg := s.loadConfig(cliCtx.String("config"))

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(cfg.LogLevel))
}

func (s *srv) loadConfig(path string) config.Configs {
	var cfg config.Configs
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		panic(err)
	}

	// Secrets can come from the environment instead of the file.
	if password := os.Getenv("DATABASE_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	if user := os.Getenv("NADEO_USER"); user != "" {
		cfg.Nadeo.User = user
	}

	if password := os.Getenv("NADEO_PASSWORD"); password != "" {
		cfg.Nadeo.Password = password
	}

	return cfg
}

func (s *srv) loadDatabase() {
	cfg := xcontext.Configs(s.ctx)

	db, err := gorm.Open(mysql.Open(cfg.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.playerRepo = repository.NewPlayerRepository()
	s.trackRepo = repository.NewTrackRepository()
	s.communityRepo = repository.NewCommunityRepository()
	s.memberRepo = repository.NewMemberRepository()
	s.predictionRepo = repository.NewPredictionRepository()
	s.betRepo = repository.NewBetRepository()
	s.recordRepo = repository.NewRecordRepository()
}

func (s *srv) loadDomains() {
	s.predictionDomain = domain.NewPredictionDomain(
		s.predictionRepo,
		s.betRepo,
		s.communityRepo,
		s.memberRepo,
		s.playerRepo,
		s.trackRepo,
		s.recordRepo,
	)
}

func (s *srv) startMigrate(cliCtx *cli.Context) error {
	s.loadContext(cliCtx)
	s.loadDatabase()
	s.migrateDB()

	xcontext.Logger(s.ctx).Infof("Database migration completed")
	return nil
}
