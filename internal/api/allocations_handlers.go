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

type CreateAllocationRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	TotalPoints int                     `json:"total_points"`
	Period      entity.AllocationPeriod `json:"period"`
	Allocations map[uuid.UUID]int       `json:"allocations"`
	StartDate   int64                   `json:"start_date"`
	EndDate     int64                   `json:"end_date"`
	IsActive    bool                    `json:"is_active"`
}

type WeeklyPointsRequest struct {
	Points int `json:"points"`
}

func (s *Server) GetAllocations(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"allocations": s.tracker.PointAllocations(),
	})
	logger.Info("allocations provided")
}

func (s *Server) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req CreateAllocationRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create allocation error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	alloc, err := s.tracker.AddPointAllocation(ctx, &core.AllocationRequest{
		Name:        req.Name,
		Description: req.Description,
		TotalPoints: req.TotalPoints,
		Period:      req.Period,
		Allocations: req.Allocations,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidRequest):
			logger.Error("create allocation error: invalid allocation data")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid allocation data", nil)
		default:
			logger.Error("create allocation error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating allocation", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, alloc)
	logger.Info("allocation created")
}

func (s *Server) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("allocation update error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid allocation id in path value", nil)
		return
	}
	var alloc entity.PointAllocation
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&alloc)
	if err != nil {
		logger.Error("allocation update error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	alloc.ID = id
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.UpdatePointAllocation(ctx, alloc)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrAllocationNotFound):
			logger.Error("allocation update error: unexist allocation")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "allocation doesn't exist", nil)
		default:
			logger.Error("allocation update error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating allocation", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, alloc)
	logger.Info("allocation updated")
}

func (s *Server) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("allocation deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid allocation id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.DeletePointAllocation(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrAllocationNotFound):
			logger.Error("allocation deletion error: unexist allocation")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "allocation doesn't exist", nil)
		default:
			logger.Error("allocation deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting allocation", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("allocation deleted")
}

func (s *Server) ActivateAllocation(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("allocation activation error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid allocation id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.ActivatePointAllocation(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrAllocationNotFound):
			logger.Error("allocation activation error: unexist allocation")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "allocation doesn't exist", nil)
		default:
			logger.Error("allocation activation error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while activating allocation", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("allocation activated")
}

func (s *Server) SetWeeklyAllocationPoints(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req WeeklyPointsRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("weekly points error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.SetWeeklyAllocationPoints(ctx, req.Points)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidRequest):
			logger.Error("weekly points error: non-positive points")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "points must be positive", nil)
		default:
			logger.Error("weekly points error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while setting weekly points", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"weekly_allocation_points": s.tracker.WeeklyAllocationPoints(),
	})
	logger.Info("weekly allocation points set")
}
