package api_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/itza2k/kore/internal/api"
	"github.com/itza2k/kore/internal/core"
	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/entity"
	jwtservice "github.com/itza2k/kore/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	core.InitValidator()
	m.Run()
}

type mockState int

const (
	stateSuccess mockState = iota
	stateServiceError
	stateNotFound
	stateInvalid
	stateConflict
	stateInsufficient
)

var (
	habitID    = uuid.New()
	goalID     = uuid.New()
	rewardID   = uuid.New()
	allocID    = uuid.New()
	mockHabit  = entity.Habit{ID: habitID, Name: "test_habit", BasePoints: 10, CurrentPoints: 10, ProgressLevel: 1}
	mockGoal   = entity.Goal{ID: goalID, Name: "test_goal", RelatedHabitIDs: []uuid.UUID{habitID}}
	mockReward = entity.Reward{ID: rewardID, Name: "test_reward", PointsCost: 50}
	mockAlloc  = entity.PointAllocation{ID: allocID, Name: "test_alloc", TotalPoints: 500, Period: entity.PeriodWeekly, IsActive: true}
)

type trackerServiceMock struct {
	state mockState
}

func (m *trackerServiceMock) ChangeState(state mockState) {
	m.state = state
}

func (m *trackerServiceMock) Habits() []entity.Habit             { return []entity.Habit{mockHabit} }
func (m *trackerServiceMock) Goals() []entity.Goal               { return []entity.Goal{mockGoal} }
func (m *trackerServiceMock) Rewards() []entity.Reward           { return []entity.Reward{mockReward} }
func (m *trackerServiceMock) Activities() []entity.Activity      { return []entity.Activity{} }
func (m *trackerServiceMock) TotalPoints() int                   { return 120 }
func (m *trackerServiceMock) WeeklyAllocationPoints() int        { return 500 }
func (m *trackerServiceMock) Subscribe(func()) func()            { return func() {} }
func (m *trackerServiceMock) PointAllocations() []entity.PointAllocation {
	return []entity.PointAllocation{mockAlloc}
}

func (m *trackerServiceMock) Summary() core.Summary {
	return core.Summary{TotalPoints: 120, WeeklyAllocationPoints: 500}
}

func (m *trackerServiceMock) AddHabit(ctx context.Context, req *core.AddHabitRequest) (*entity.Habit, error) {
	switch m.state {
	case stateInvalid:
		return nil, errorvalues.ErrInvalidRequest
	case stateConflict:
		return nil, errorvalues.ErrHabitExists
	case stateServiceError:
		return nil, errors.New("mocked error")
	default:
		return &mockHabit, nil
	}
}

func (m *trackerServiceMock) UpdateHabit(ctx context.Context, habit entity.Habit) error {
	return m.mutationErr(errorvalues.ErrHabitNotFound)
}

func (m *trackerServiceMock) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	return m.mutationErr(errorvalues.ErrHabitNotFound)
}

func (m *trackerServiceMock) CompleteHabit(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	switch m.state {
	case stateNotFound:
		return nil, errorvalues.ErrHabitNotFound
	case stateServiceError:
		return nil, errors.New("mocked error")
	default:
		return &entity.Activity{ID: uuid.New(), HabitID: id, PointsEarned: 10}, nil
	}
}

func (m *trackerServiceMock) ResetDailyHabits(ctx context.Context) error {
	if m.state == stateServiceError {
		return errors.New("mocked error")
	}
	return nil
}

func (m *trackerServiceMock) AddGoal(ctx context.Context, req *core.AddGoalRequest) (*entity.Goal, error) {
	switch m.state {
	case stateInvalid:
		return nil, errorvalues.ErrInvalidRequest
	case stateNotFound:
		return nil, errorvalues.ErrHabitNotFound
	case stateServiceError:
		return nil, errors.New("mocked error")
	default:
		return &mockGoal, nil
	}
}

func (m *trackerServiceMock) UpdateGoal(ctx context.Context, goal entity.Goal) error {
	return m.mutationErr(errorvalues.ErrGoalNotFound)
}

func (m *trackerServiceMock) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	return m.mutationErr(errorvalues.ErrGoalNotFound)
}

func (m *trackerServiceMock) AddHabitToGoal(ctx context.Context, goalID, habitID uuid.UUID) error {
	return m.mutationErr(errorvalues.ErrGoalNotFound)
}

func (m *trackerServiceMock) AddReward(ctx context.Context, req *core.AddRewardRequest) (*entity.Reward, error) {
	switch m.state {
	case stateInvalid:
		return nil, errorvalues.ErrInvalidRequest
	case stateServiceError:
		return nil, errors.New("mocked error")
	default:
		return &mockReward, nil
	}
}

func (m *trackerServiceMock) UpdateReward(ctx context.Context, reward entity.Reward) error {
	return m.mutationErr(errorvalues.ErrRewardNotFound)
}

func (m *trackerServiceMock) DeleteReward(ctx context.Context, id uuid.UUID) error {
	return m.mutationErr(errorvalues.ErrRewardNotFound)
}

func (m *trackerServiceMock) RedeemReward(ctx context.Context, id uuid.UUID) (bool, error) {
	switch m.state {
	case stateNotFound:
		return false, errorvalues.ErrRewardNotFound
	case stateInsufficient:
		return false, nil
	case stateServiceError:
		return false, errors.New("mocked error")
	default:
		return true, nil
	}
}

func (m *trackerServiceMock) AddPointAllocation(ctx context.Context, req *core.AllocationRequest) (*entity.PointAllocation, error) {
	switch m.state {
	case stateInvalid:
		return nil, errorvalues.ErrInvalidRequest
	case stateServiceError:
		return nil, errors.New("mocked error")
	default:
		return &mockAlloc, nil
	}
}

func (m *trackerServiceMock) UpdatePointAllocation(ctx context.Context, alloc entity.PointAllocation) error {
	return m.mutationErr(errorvalues.ErrAllocationNotFound)
}

func (m *trackerServiceMock) DeletePointAllocation(ctx context.Context, id uuid.UUID) error {
	return m.mutationErr(errorvalues.ErrAllocationNotFound)
}

func (m *trackerServiceMock) ActivatePointAllocation(ctx context.Context, id uuid.UUID) error {
	return m.mutationErr(errorvalues.ErrAllocationNotFound)
}

func (m *trackerServiceMock) SetWeeklyAllocationPoints(ctx context.Context, points int) error {
	switch m.state {
	case stateInvalid:
		return errorvalues.ErrInvalidRequest
	case stateServiceError:
		return errors.New("mocked error")
	default:
		return nil
	}
}

func (m *trackerServiceMock) mutationErr(notFound error) error {
	switch m.state {
	case stateNotFound:
		return notFound
	case stateServiceError:
		return errors.New("mocked error")
	default:
		return nil
	}
}

type adviceServiceMock struct {
	state mockState
}

func (m *adviceServiceMock) GenerateAdvice(ctx context.Context, prompt, apiKey string) (string, error) {
	switch m.state {
	case stateServiceError:
		return "", errorvalues.ErrAdviceUnavailable
	case stateInvalid:
		return "", errorvalues.ErrMissingAPIKey
	default:
		return "mocked advice", nil
	}
}

const testAccessKey = "test-access-key"

func newTestServer(tracker *trackerServiceMock, advice *adviceServiceMock) *api.Server {
	return api.New(&api.ServicesList{
		Tracker:    tracker,
		Advice:     advice,
		JwtService: jwtservice.New("test-secret"),
		AccessKey:  testAccessKey,
		AdviceKey:  "default-gemini-key",
	})
}

func TestCreateSession(t *testing.T) {
	mock := &trackerServiceMock{}
	serv := newTestServer(mock, &adviceServiceMock{})
	t.Run("session created", func(t *testing.T) {
		body, _ := sonic.ConfigDefault.Marshal(api.CreateSessionRequest{AccessKey: testAccessKey})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(body))
		serv.CreateSession(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		var resp map[string]string
		assert.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Result().Body).Decode(&resp))
		assert.NotEmpty(t, resp["token"])
	})
	t.Run("wrong access key", func(t *testing.T) {
		body, _ := sonic.ConfigDefault.Marshal(api.CreateSessionRequest{AccessKey: "nope"})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(body))
		serv.CreateSession(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Result().StatusCode)
	})
	t.Run("invalid body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/session", nil)
		serv.CreateSession(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestCreateHabitHandler(t *testing.T) {
	mock := &trackerServiceMock{}
	serv := newTestServer(mock, &adviceServiceMock{})
	body, err := sonic.ConfigDefault.Marshal(api.CreateHabitRequest{Name: "test_habit", BasePoints: 10})
	if err != nil {
		t.Fatal(err)
	}
	t.Run("created", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", bytes.NewReader(body))
		mock.ChangeState(stateSuccess)
		serv.CreateHabit(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Result().StatusCode)
	})
	t.Run("invalid data", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", bytes.NewReader(body))
		mock.ChangeState(stateInvalid)
		serv.CreateHabit(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("duplicate", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", bytes.NewReader(body))
		mock.ChangeState(stateConflict)
		serv.CreateHabit(rr, req)
		assert.Equal(t, http.StatusConflict, rr.Result().StatusCode)
	})
	t.Run("service error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", bytes.NewReader(body))
		mock.ChangeState(stateServiceError)
		serv.CreateHabit(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
	})
	t.Run("invalid body", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits", nil)
		mock.ChangeState(stateSuccess)
		serv.CreateHabit(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestCompleteHabitHandler(t *testing.T) {
	mock := &trackerServiceMock{}
	serv := newTestServer(mock, &adviceServiceMock{})
	t.Run("completed", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits/"+habitID.String()+"/complete", nil)
		req.SetPathValue("id", habitID.String())
		mock.ChangeState(stateSuccess)
		serv.CompleteHabit(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Result().StatusCode)
	})
	t.Run("unknown habit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits/"+habitID.String()+"/complete", nil)
		req.SetPathValue("id", habitID.String())
		mock.ChangeState(stateNotFound)
		serv.CompleteHabit(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Result().StatusCode)
	})
	t.Run("malformed id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/habits/nope/complete", nil)
		req.SetPathValue("id", "nope")
		mock.ChangeState(stateSuccess)
		serv.CompleteHabit(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestRedeemRewardHandler(t *testing.T) {
	mock := &trackerServiceMock{}
	serv := newTestServer(mock, &adviceServiceMock{})
	newReq := func() (*httptest.ResponseRecorder, *http.Request) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rewards/"+rewardID.String()+"/redeem", nil)
		req.SetPathValue("id", rewardID.String())
		return rr, req
	}
	t.Run("redeemed", func(t *testing.T) {
		rr, req := newReq()
		mock.ChangeState(stateSuccess)
		serv.RedeemReward(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("insufficient points", func(t *testing.T) {
		rr, req := newReq()
		mock.ChangeState(stateInsufficient)
		serv.RedeemReward(rr, req)
		assert.Equal(t, http.StatusConflict, rr.Result().StatusCode)
	})
	t.Run("unknown reward", func(t *testing.T) {
		rr, req := newReq()
		mock.ChangeState(stateNotFound)
		serv.RedeemReward(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Result().StatusCode)
	})
	t.Run("service error", func(t *testing.T) {
		rr, req := newReq()
		mock.ChangeState(stateServiceError)
		serv.RedeemReward(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Result().StatusCode)
	})
}

func TestSetWeeklyAllocationPointsHandler(t *testing.T) {
	mock := &trackerServiceMock{}
	serv := newTestServer(mock, &adviceServiceMock{})
	body, err := sonic.ConfigDefault.Marshal(api.WeeklyPointsRequest{Points: 400})
	if err != nil {
		t.Fatal(err)
	}
	t.Run("set", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/allocations/weekly-points", bytes.NewReader(body))
		mock.ChangeState(stateSuccess)
		serv.SetWeeklyAllocationPoints(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("non-positive points", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/allocations/weekly-points", bytes.NewReader(body))
		mock.ChangeState(stateInvalid)
		serv.SetWeeklyAllocationPoints(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestGetSummaryHandler(t *testing.T) {
	mock := &trackerServiceMock{}
	serv := newTestServer(mock, &adviceServiceMock{})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	serv.GetSummary(rr, req)
	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	var summary core.Summary
	assert.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Result().Body).Decode(&summary))
	assert.Equal(t, 120, summary.TotalPoints)
	assert.Equal(t, 500, summary.WeeklyAllocationPoints)
}

func TestGetAdviceHandler(t *testing.T) {
	mock := &trackerServiceMock{}
	adviceMock := &adviceServiceMock{}
	serv := newTestServer(mock, adviceMock)
	body, err := sonic.ConfigDefault.Marshal(api.AdviceRequest{Query: "how to keep streaks?"})
	if err != nil {
		t.Fatal(err)
	}
	t.Run("advice provided", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", bytes.NewReader(body))
		adviceMock.state = stateSuccess
		serv.GetAdvice(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
		var resp map[string]string
		assert.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Result().Body).Decode(&resp))
		assert.Equal(t, "mocked advice", resp["advice"])
	})
	t.Run("empty query", func(t *testing.T) {
		emptyBody, _ := sonic.ConfigDefault.Marshal(api.AdviceRequest{})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", bytes.NewReader(emptyBody))
		serv.GetAdvice(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
	t.Run("backend unavailable", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", bytes.NewReader(body))
		adviceMock.state = stateServiceError
		serv.GetAdvice(rr, req)
		assert.Equal(t, http.StatusBadGateway, rr.Result().StatusCode)
	})
	t.Run("missing api key", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/advice", bytes.NewReader(body))
		adviceMock.state = stateInvalid
		serv.GetAdvice(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	})
}

func TestAuthMiddleware(t *testing.T) {
	mock := &trackerServiceMock{}
	serv := newTestServer(mock, &adviceServiceMock{})
	jwt := jwtservice.New("test-secret")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := serv.AuthMiddleware(next)
	t.Run("valid token", func(t *testing.T) {
		token, err := jwt.GenerateToken("kore-desktop")
		assert.NoError(t, err)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	})
	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
	t.Run("garbage token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
	t.Run("wrong scheme", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/habits", nil)
		req.Header.Set("Authorization", "Basic abc")
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Result().StatusCode)
	})
}
