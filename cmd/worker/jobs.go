package main

import (
	"context"
	"time"

	"soccer_v3/pipeline/internal/advisor"
	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/config"
	"soccer_v3/pipeline/internal/grader"
	"soccer_v3/pipeline/internal/mapping"
	"soccer_v3/pipeline/internal/repository"
	"soccer_v3/pipeline/internal/scheduler"
	"soccer_v3/pipeline/internal/settler"
)

// registerJobs wires the background sweeps onto the scheduler. Every sweep
// sits behind its feature flag so a misbehaving stage can be switched off
// without a deploy. The services log their own summaries; the closures here
// only bind schedules to entry points.
func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	db *repository.Database,
	footy *client.FootyStats,
	sports *client.APISports,
	mistral *client.Mistral,
) {
	if cfg.EnableGrading {
		g := grader.New(db)
		sched.AddCron(cfg.GradeSweepCron, scheduler.Job{
			Name: "grading",
			Run:  g.GradeAll,
		})
	}

	if cfg.EnableAdvisor {
		a := advisor.New(db, mistral, cfg.AdvisorMaxMatches)
		sched.AddCron(cfg.AdvisorSweepCron, scheduler.Job{
			Name: "advisor",
			Run: func(ctx context.Context) error {
				fromDate := time.Now().UTC().Format("2006-01-02")
				_, err := a.Run(ctx, fromDate)
				return err
			},
		})
	}

	if cfg.EnableMapping {
		m := mapping.New(db, sports, cfg.APISportsSeason)
		sched.AddCron(cfg.TeamSyncCron, scheduler.Job{
			Name: "team_sync",
			Run: func(ctx context.Context) error {
				_, err := m.SyncTeams(ctx)
				return err
			},
		})
		sched.AddCron(cfg.MatchSyncCron, scheduler.Job{
			Name: "match_sync",
			Run: func(ctx context.Context) error {
				for _, date := range mapping.DefaultDates(time.Now()) {
					if _, err := m.SyncMatches(ctx, date); err != nil {
						return err
					}
				}
				return nil
			},
		})
	}

	if cfg.EnableSettlement {
		s := settler.New(db, footy)
		settle := func(ctx context.Context) error {
			_, err := s.SettleDate(ctx, settler.TargetDate(time.Now()))
			return err
		}
		sched.AddCron(cfg.SettlementCron, scheduler.Job{
			Name: "settlement",
			Run:  settle,
		})
		// Matches that finish late, or provider hiccups at the scheduled
		// hour, get swept up by the catchup run.
		sched.AddInterval(cfg.SettlementCatchupInterval, scheduler.Job{
			Name: "settlement_catchup",
			Run:  settle,
		})
	}
}
