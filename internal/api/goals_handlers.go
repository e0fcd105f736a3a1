package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/itza2k/kore/internal/core"
	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/entity"
	"github.com/itza2k/kore/pkg/httputil"
)

type CreateGoalRequest struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	TargetDate      int64       `json:"target_date"`
	RelatedHabitIDs []uuid.UUID `json:"related_habit_ids"`
}

func (s *Server) GetGoals(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"goals": s.tracker.Goals(),
	})
	logger.Info("goals provided")
}

func (s *Server) CreateGoal(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req CreateGoalRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create goal error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	goal, err := s.tracker.AddGoal(ctx, &core.AddGoalRequest{
		Name:            req.Name,
		Description:     req.Description,
		TargetDate:      req.TargetDate,
		RelatedHabitIDs: req.RelatedHabitIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidRequest):
			logger.Error("create goal error: invalid goal data")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal data", nil)
		case errors.Is(err, errorvalues.ErrHabitNotFound):
			logger.Error("create goal error: unexist related habit")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "related habit doesn't exist", nil)
		default:
			logger.Error("create goal error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating goal", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, goal)
	logger.Info("goal created")
}

func (s *Server) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("goal update error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal id in path value", nil)
		return
	}
	var goal entity.Goal
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&goal)
	if err != nil {
		logger.Error("goal update error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	goal.ID = id
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.UpdateGoal(ctx, goal)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrGoalNotFound):
			logger.Error("goal update error: unexist goal")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "goal doesn't exist", nil)
		default:
			logger.Error("goal update error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating goal", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, goal)
	logger.Info("goal updated")
}

func (s *Server) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("goal deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.DeleteGoal(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrGoalNotFound):
			logger.Error("goal deletion error: unexist goal")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "goal doesn't exist", nil)
		default:
			logger.Error("goal deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting goal", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("goal deleted")
}

func (s *Server) AddHabitToGoal(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	goalID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("goal linking error: invalid goal id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid goal id in path value", nil)
		return
	}
	habitID, err := uuid.Parse(r.PathValue("habitID"))
	if err != nil {
		logger.Error("goal linking error: invalid habit id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.AddHabitToGoal(ctx, goalID, habitID)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrGoalNotFound):
			logger.Error("goal linking error: unexist goal")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "goal doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrHabitNotFound):
			logger.Error("goal linking error: unexist habit")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
		default:
			logger.Error("goal linking error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while linking habit to goal", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("habit linked to goal")
}
