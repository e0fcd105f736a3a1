package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	mx         *chi.Mux
	tracker    TrackerServiceI
	advice     AdviceServiceI
	jwtService JWTServiceI
	accessKey  string
	adviceKey  string
}

type ServicesList struct {
	Tracker    TrackerServiceI
	Advice     AdviceServiceI
	JwtService JWTServiceI
	// AccessKey guards the single-user API; the desktop client trades it
	// for a session token
	AccessKey string
	// AdviceKey is the default key for the advice backend, request may
	// override
	AdviceKey string
}

func New(servicesOptions *ServicesList) *Server {
	return &Server{
		mx:         chi.NewMux(),
		tracker:    servicesOptions.Tracker,
		advice:     servicesOptions.Advice,
		jwtService: servicesOptions.JwtService,
		accessKey:  servicesOptions.AccessKey,
		adviceKey:  servicesOptions.AdviceKey,
	}
}

func (s *Server) Handler() http.Handler {
	return s.mx
}

func (s *Server) Run(addr string) error {
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Post("/session", s.CreateSession)
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Get("/habits", s.GetHabits)
			r.Post("/habits", s.CreateHabit)
			r.Put("/habits/{id}", s.UpdateHabit)
			r.Delete("/habits/{id}", s.DeleteHabit)
			r.Post("/habits/{id}/complete", s.CompleteHabit)
			r.Post("/habits/reset", s.ResetDailyHabits)

			r.Get("/goals", s.GetGoals)
			r.Post("/goals", s.CreateGoal)
			r.Put("/goals/{id}", s.UpdateGoal)
			r.Delete("/goals/{id}", s.DeleteGoal)
			r.Post("/goals/{id}/habits/{habitID}", s.AddHabitToGoal)

			r.Get("/rewards", s.GetRewards)
			r.Post("/rewards", s.CreateReward)
			r.Put("/rewards/{id}", s.UpdateReward)
			r.Delete("/rewards/{id}", s.DeleteReward)
			r.Post("/rewards/{id}/redeem", s.RedeemReward)

			r.Get("/activities", s.GetActivities)

			r.Get("/allocations", s.GetAllocations)
			r.Post("/allocations", s.CreateAllocation)
			r.Put("/allocations/weekly-points", s.SetWeeklyAllocationPoints)
			r.Put("/allocations/{id}", s.UpdateAllocation)
			r.Delete("/allocations/{id}", s.DeleteAllocation)
			r.Post("/allocations/{id}/activate", s.ActivateAllocation)

			r.Get("/summary", s.GetSummary)
			r.Post("/advice", s.GetAdvice)
			r.Get("/events", s.Events)
		})
	})
	return http.ListenAndServe(addr, s.mx)
}
