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

type CreateRewardRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	PointsCost    int    `json:"points_cost"`
	Category      string `json:"category"`
	IsEcoFriendly bool   `json:"is_eco_friendly"`
}

func (s *Server) GetRewards(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"rewards": s.tracker.Rewards(),
	})
	logger.Info("rewards provided")
}

func (s *Server) CreateReward(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req CreateRewardRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create reward error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	reward, err := s.tracker.AddReward(ctx, &core.AddRewardRequest{
		Name:          req.Name,
		Description:   req.Description,
		PointsCost:    req.PointsCost,
		Category:      req.Category,
		IsEcoFriendly: req.IsEcoFriendly,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidRequest):
			logger.Error("create reward error: invalid reward data")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reward data", nil)
		default:
			logger.Error("create reward error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating reward", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, reward)
	logger.Info("reward created")
}

func (s *Server) UpdateReward(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("reward update error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reward id in path value", nil)
		return
	}
	var reward entity.Reward
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&reward)
	if err != nil {
		logger.Error("reward update error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	reward.ID = id
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.UpdateReward(ctx, reward)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrRewardNotFound):
			logger.Error("reward update error: unexist reward")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reward doesn't exist", nil)
		default:
			logger.Error("reward update error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while updating reward", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, reward)
	logger.Info("reward updated")
}

func (s *Server) DeleteReward(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("reward deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reward id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.tracker.DeleteReward(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrRewardNotFound):
			logger.Error("reward deletion error: unexist reward")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reward doesn't exist", nil)
		default:
			logger.Error("reward deletion error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while deleting reward", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Info("reward deleted")
}

func (s *Server) RedeemReward(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("reward redeeming error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reward id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	redeemed, err := s.tracker.RedeemReward(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrRewardNotFound):
			logger.Error("reward redeeming error: unexist reward")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reward doesn't exist", nil)
		default:
			logger.Error("reward redeeming error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while redeeming reward", nil)
		}
		return
	}
	if !redeemed {
		logger.Error("reward redeeming error: insufficient points")
		httputil.WriteErrorResponse(w, http.StatusConflict, "not enough points to redeem reward", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"redeemed":     true,
		"total_points": s.tracker.TotalPoints(),
	})
	logger.Info("reward redeemed")
}
