// @title Kore API
// @description API for habit-tracker and reward app "Kore"
// @BasePath /api/v1
// @schemes http
package main

import (
	"context"
	"log"
	"time"

	"github.com/itza2k/kore/internal/advice"
	"github.com/itza2k/kore/internal/api"
	"github.com/itza2k/kore/internal/core"
	"github.com/itza2k/kore/internal/repository"
	"github.com/itza2k/kore/internal/scheduler"
	"github.com/itza2k/kore/pkg/cleanup"
	"github.com/itza2k/kore/pkg/config"
	jwtservice "github.com/itza2k/kore/pkg/jwt_service"
)

func init() {
	core.InitValidator()
}

func main() {
	defer cleanup.CleanUp()
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	tracker := core.NewTracker(core.Repositories{
		Habits:      repository.NewHabitsRepo(&dbCfg),
		Goals:       repository.NewGoalsRepo(&dbCfg),
		Rewards:     repository.NewRewardsRepo(&dbCfg),
		Activities:  repository.NewActivitiesRepo(&dbCfg),
		Allocations: repository.NewAllocationsRepo(&dbCfg),
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	err := tracker.Load(ctx)
	cancel()
	if err != nil {
		log.Fatal("loading tracker state error: " + err.Error())
	}

	sched := scheduler.New(tracker)
	if err := sched.Start(); err != nil {
		log.Fatal("starting scheduler error: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "stopping daily reset scheduler",
		F: func() error {
			sched.Stop()
			return nil
		},
	})

	serv := api.New(&api.ServicesList{
		Tracker:    tracker,
		Advice:     advice.New(),
		JwtService: jwtservice.New(cfg.GetString("JWT_SECRET")),
		AccessKey:  cfg.GetString("KORE_ACCESS_KEY"),
		AdviceKey:  cfg.GetString("GEMINI_API_KEY"),
	})
	err = serv.Run(cfg.GetStringOr("API_ADDRESS", ":8080"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
