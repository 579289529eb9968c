package main

import (
	"github.com/trackpredict/backend/internal/domain/cron"
	"github.com/trackpredict/backend/internal/domain/settle"
	"github.com/trackpredict/backend/internal/repository"
	"github.com/trackpredict/backend/pkg/api/nadeo"
	"github.com/trackpredict/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(cliCtx *cli.Context) error {
	s.loadContext(cliCtx)
	s.loadDatabase()
	s.migrateDB()
	s.loadRepos()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx)
	endpoint := nadeo.New(cfg.Nadeo, repository.NewCredentialRepository())
	resolver := settle.NewResolver(s.playerRepo, s.trackRepo, s.recordRepo, endpoint)
	engine := settle.NewEngine(s.predictionRepo, s.betRepo, s.memberRepo, resolver)

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewSettlementCronJob(engine, cfg.Settlement.Interval))
	cronJobManager.Start(s.ctx)

	return nil
}
