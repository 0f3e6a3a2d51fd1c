package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cncsignals/internal/domain"
	"cncsignals/internal/repository"
	"cncsignals/internal/storage"
	"cncsignals/internal/usecase"
)

// fakeAnalysisService counts provider calls so tests can assert the quota
// gate fires before the provider is ever reached.
type fakeAnalysisService struct {
	analyzeCalls int
	analyzeErr   error
	avatarCalls  int
	avatarErr    error
}

func (f *fakeAnalysisService) Analyze(_ context.Context, pair, timeframe, _ string) (*domain.MarketAnalysis, error) {
	f.analyzeCalls++
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return &domain.MarketAnalysis{
		Pair:            pair,
		Timeframe:       timeframe,
		Signal:          domain.SignalBuy,
		RiskRewardRatio: "1:2",
		Confidence:      80,
		Timestamp:       time.Now().UnixMilli(),
	}, nil
}

func (f *fakeAnalysisService) Backtest(context.Context, string, string, string, string, string) (*domain.BacktestReport, error) {
	return &domain.BacktestReport{}, nil
}

func (f *fakeAnalysisService) Chat(context.Context, string) (string, error) {
	return "ok", nil
}

func (f *fakeAnalysisService) GenerateAvatar(context.Context, string) (string, error) {
	f.avatarCalls++
	if f.avatarErr != nil {
		return "", f.avatarErr
	}
	return "data:image/png;base64,aW1n", nil
}

func (f *fakeAnalysisService) MarketNews(context.Context) ([]domain.NewsItem, error) {
	return nil, nil
}

type analysisFixture struct {
	provider *fakeAnalysisService
	sessions *usecase.SessionService
	usage    *usecase.UsageService
	history  *usecase.HistoryService
	handler  *AnalysisHandler
}

func newAnalysisFixture(t *testing.T) *analysisFixture {
	t.Helper()

	store := storage.NewMemoryStore()
	sessions := usecase.NewSessionService(
		repository.NewUserRepository(store),
		repository.NewSessionRepository(store),
		repository.NewHistoryRepository(store),
		time.Now,
	)
	history := usecase.NewHistoryService(repository.NewHistoryRepository(store), sessions)
	usage := usecase.NewUsageService(sessions, repository.NewGuestRepository(store), usecase.DefaultDailyLimit, time.Now)
	provider := &fakeAnalysisService{}
	return &analysisFixture{
		provider: provider,
		sessions: sessions,
		usage:    usage,
		history:  history,
		handler:  NewAnalysisHandler(provider, sessions, usage, history),
	}
}

func (f *analysisFixture) analyze(t *testing.T) int {
	t.Helper()
	rec := doJSON(t, f.handler.Analyze, `{"pair":"EUR/USD","timeframe":"H1"}`)
	return rec.Code
}

func TestAnalysisHandler_QuotaGateStopsBeforeProvider(t *testing.T) {
	f := newAnalysisFixture(t)

	for i := 0; i < usecase.DefaultDailyLimit; i++ {
		require.Equal(t, http.StatusOK, f.analyze(t))
	}
	require.Equal(t, usecase.DefaultDailyLimit, f.provider.analyzeCalls)

	// The exhausted caller is rejected without reaching the provider.
	assert.Equal(t, http.StatusTooManyRequests, f.analyze(t))
	assert.Equal(t, usecase.DefaultDailyLimit, f.provider.analyzeCalls)
}

func TestAnalysisHandler_ProviderFailureLeavesLedgerUntouched(t *testing.T) {
	f := newAnalysisFixture(t)
	f.provider.analyzeErr = domain.ErrRateLimited

	rec := doJSON(t, f.handler.Analyze, `{"pair":"EUR/USD","timeframe":"H1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Zero(t, n, "a failed call is not charged")
	assert.Zero(t, f.history.Len())
}

func TestAnalysisHandler_ValidationRejectsBeforeProvider(t *testing.T) {
	f := newAnalysisFixture(t)

	rec := doJSON(t, f.handler.Analyze, `{"pair":"EUR/USD"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, f.provider.analyzeCalls)
}

func TestAnalysisHandler_HistoryAppendIsVipOnly(t *testing.T) {
	f := newAnalysisFixture(t)

	// Registered non-VIP: charged but no history accumulates.
	_, err := f.sessions.Register("alice@example.com", "Alice", "secret123", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, f.analyze(t))

	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, f.history.Len())

	// VIP: history accumulates, usage is not charged.
	_, err = f.sessions.UpgradeToVip()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, f.analyze(t))

	n, err = f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.history.Len())
}

func TestAnalysisHandler_BacktestRequiresVip(t *testing.T) {
	f := newAnalysisFixture(t)

	rec := doJSON(t, f.handler.Backtest, `{"pair":"EUR/USD","timeframe":"H1","strategy":"SMC"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := f.sessions.Register("alice@example.com", "Alice", "secret123", "")
	require.NoError(t, err)
	rec = doJSON(t, f.handler.Backtest, `{"pair":"EUR/USD","timeframe":"H1","strategy":"SMC"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err = f.sessions.UpgradeToVip()
	require.NoError(t, err)
	rec = doJSON(t, f.handler.Backtest, `{"pair":"EUR/USD","timeframe":"H1","strategy":"SMC"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserHandler_GenerateAvatar(t *testing.T) {
	f := newAnalysisFixture(t)
	h := NewUserHandler(f.sessions, f.usage, f.provider, usecase.DefaultDailyLimit)

	// No active session.
	rec := doJSON(t, h.GenerateAvatar, `{"description":"cyberpunk bull"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.provider.avatarCalls)

	_, err := f.sessions.Register("alice@example.com", "Alice", "secret123", "")
	require.NoError(t, err)

	rec = doJSON(t, h.GenerateAvatar, `{"description":"cyberpunk bull"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.provider.avatarCalls)

	// The generated avatar is stored on the identity, uncharged.
	user, ok := f.sessions.Current()
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,aW1n", user.Avatar)
	n, err := f.usage.CurrentUsage()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserHandler_GenerateAvatarProviderFailure(t *testing.T) {
	f := newAnalysisFixture(t)
	f.provider.avatarErr = domain.ErrEmptyResult
	h := NewUserHandler(f.sessions, f.usage, f.provider, usecase.DefaultDailyLimit)

	_, err := f.sessions.Register("alice@example.com", "Alice", "secret123", "")
	require.NoError(t, err)

	rec := doJSON(t, h.GenerateAvatar, `{"description":"cyberpunk bull"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	user, ok := f.sessions.Current()
	require.True(t, ok)
	assert.Empty(t, user.Avatar, "a failed generation does not touch the profile")
}
