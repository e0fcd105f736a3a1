package api

import (
	"context"
	"crypto/subtle"
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

type CreateSessionRequest struct {
	AccessKey string `json:"access_key"`
}

type CreateHabitRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	BasePoints    int    `json:"base_points"`
	IsEcoFriendly bool   `json:"is_eco_friendly"`
	Category      string `json:"category"`
}

func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req CreateSessionRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("session error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.AccessKey), []byte(s.accessKey)) != 1 {
		logger.Error("session error: wrong access key")
		httputil.WriteErrorResponse(w, http.StatusForbidden, "wrong access key", errorvalues.ErrWrongKey)
		return
	}
	token, err := s.jwtService.GenerateToken("kore-desktop")
	if err != nil {
		logger.Error("session error: generating token error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error creating token", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"token": token,
	})
	logger.Info("session created")
}

func (s *Server) GetHabits(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"habits": s.tracker.Habits(),
	})
	logger.Info("habits provided")
}

func (s *Server) CreateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req CreateHabitRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create habit error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	habit, err := s.tracker.AddHabit(ctx, &core.AddHabitRequest{
		Name:          req.Name,
		Description:   req.Description,
		BasePoints:    req.BasePoints,
		IsEcoFriendly: req.IsEcoFriendly,
		Category:      req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidRequest):
			logger.Error("create habit error: invalid habit data")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit data", nil)
		case errors.Is(err, errorvalues.ErrHabitExists):
			logger.Error("create habit error: attempt to create existed habit")
			httputil.WriteErrorResponse(w, http.StatusConflict, "habit already exists", nil)
		default:
			logger.Error("create habit error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating habit", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, habit)
	logger.Info("habit created")
}

func (s *Server) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("habit update error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	var habit entity.Habit
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&habit)
	if err != nil {
		logger.Error("habit update error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	habit.ID = id
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.UpdateHabit(ctx, habit)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrHabitNotFound):
			logger.Error("habit update error: unexist habit")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
		default:
			logger.Error("habit update error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating habit", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, habit)
	logger.Info("habit updated")
}

func (s *Server) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("habit deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.DeleteHabit(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrHabitNotFound):
			logger.Error("habit deletion error: unexist habit")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
		default:
			logger.Error("habit deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting habit", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("habit deleted")
}

func (s *Server) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("habit completion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid habit id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	activity, err := s.tracker.CompleteHabit(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrHabitNotFound):
			logger.Error("habit completion error: unexist habit")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "habit doesn't exist", nil)
		default:
			logger.Error("habit completion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while completing habit", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, activity)
	logger.Info("habit completed")
}

func (s *Server) ResetDailyHabits(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err := s.tracker.ResetDailyHabits(ctx)
	if err != nil {
		logger.Error("daily reset error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while resetting habits", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("daily habits reset")
}
