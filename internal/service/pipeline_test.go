package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"draw_fetcher/internal/domain"
	"draw_fetcher/internal/metrics"
	"draw_fetcher/internal/service/mocks"
)

type PipelineTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source    *mocks.MockSource
	draws     *mocks.MockDrawStore
	syncState *mocks.MockSyncStateStore
	txManager *mocks.MockTransactionManager
	publisher *mocks.MockPublisher

	pipeline *Pipeline
	logger   *slog.Logger
	state    *domain.SyncState
}

func (s *PipelineTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.source = mocks.NewMockSource(s.ctrl)
	s.draws = mocks.NewMockDrawStore(s.ctrl)
	s.syncState = mocks.NewMockSyncStateStore(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.source.EXPECT().ID().Return("test-source").AnyTimes()
	s.source.EXPECT().Name().Return("Test Source").AnyTimes()

	s.state = &domain.SyncState{SourceID: "test-source", TotalInserted: 4}
	s.syncState.EXPECT().Get(gomock.Any(), "test-source").Return(s.state, nil).AnyTimes()

	s.pipeline = s.newPipeline(s.publisher)
}

func (s *PipelineTestSuite) newPipeline(publisher Publisher) *Pipeline {
	return NewPipeline(
		s.source,
		NewPersister(s.draws, s.txManager, s.logger),
		s.syncState,
		publisher,
		metrics.New(prometheus.NewRegistry()),
		s.logger,
	)
}

func (s *PipelineTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (s *PipelineTestSuite) expectStoredOnce(ctx context.Context, drawNumber string, count int) {
	s.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	)
	s.draws.EXPECT().LockDrawNumber(ctx, drawNumber).Return(nil)
	s.draws.EXPECT().CountByDrawNumber(ctx, drawNumber).Return(count, nil)
}

func (s *PipelineTestSuite) TestRun_NewDraw() {
	ctx := context.Background()
	rows := []domain.RawRow{
		{"P1", "pending", "pending", "pending"},
		{"P2", "10", "Small", "Green"},
	}
	want := domain.Draw{DrawNumber: "P2", ResultNumber: "10", Size: "Small", Color: "Green"}

	s.source.EXPECT().FetchRows(ctx).Return(rows, nil)
	s.expectStoredOnce(ctx, "P2", 0)
	s.draws.EXPECT().Insert(ctx, gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, d *domain.Draw) error {
			s.Equal("P2", d.DrawNumber)
			return nil
		},
	)
	s.syncState.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, st *domain.SyncState) error {
			s.Equal("P2", st.LastDrawNumber)
			s.Equal(int64(5), st.TotalInserted)
			s.Empty(st.LastError)
			s.False(st.LastSyncedAt.IsZero())
			return nil
		},
	)

	result, err := s.pipeline.Run(ctx)

	s.Require().NoError(err)
	s.True(result.Inserted)
	s.True(result.Published)
	s.NotEmpty(result.CycleID)
	s.Equal(want.DrawNumber, result.Draw.DrawNumber)
	s.Equal(want.ResultNumber, result.Draw.ResultNumber)
	s.Equal(want.Size, result.Draw.Size)
	s.Equal(want.Color, result.Draw.Color)
}

func (s *PipelineTestSuite) TestRun_ExistingDraw() {
	ctx := context.Background()

	s.source.EXPECT().FetchRows(ctx).Return([]domain.RawRow{{"P2", "10", "Small", "Green"}}, nil)
	s.expectStoredOnce(ctx, "P2", 1)
	s.syncState.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, st *domain.SyncState) error {
			s.Equal(int64(4), st.TotalInserted)
			return nil
		},
	)

	result, err := s.pipeline.Run(ctx)

	s.Require().NoError(err)
	s.False(result.Inserted)
	s.False(result.Published)
	s.Equal("P2", result.Draw.DrawNumber)
}

func (s *PipelineTestSuite) TestRun_AllPendingYieldsSentinel() {
	ctx := context.Background()

	s.source.EXPECT().FetchRows(ctx).Return([]domain.RawRow{{"P1", "pending", "pending", "pending"}}, nil)
	s.syncState.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, st *domain.SyncState) error {
			s.Empty(st.LastDrawNumber)
			return nil
		},
	)

	result, err := s.pipeline.Run(ctx)

	s.Require().NoError(err)
	s.False(result.Inserted)
	s.Equal(domain.SentinelDraw(), result.Draw)
}

func (s *PipelineTestSuite) TestRun_SourceError() {
	ctx := context.Background()
	loadErr := errors.Join(domain.ErrLoadFailed, errors.New("timeout"))

	s.source.EXPECT().FetchRows(ctx).Return(nil, loadErr)
	s.syncState.EXPECT().Update(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, st *domain.SyncState) error {
			s.Contains(st.LastError, "fetch rows")
			return nil
		},
	)

	result, err := s.pipeline.Run(ctx)

	s.Nil(result)
	s.ErrorIs(err, domain.ErrLoadFailed)
	s.Contains(err.Error(), "fetch rows")
}

func (s *PipelineTestSuite) TestRun_PersistError() {
	ctx := context.Background()

	s.source.EXPECT().FetchRows(ctx).Return([]domain.RawRow{{"P2", "10", "Small", "Green"}}, nil)
	s.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).Return(errors.New("connection reset"))
	s.syncState.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	result, err := s.pipeline.Run(ctx)

	s.Nil(result)
	s.ErrorIs(err, domain.ErrPersist)
}

func (s *PipelineTestSuite) TestRun_PanicBecomesUnexpectedError() {
	ctx := context.Background()

	s.source.EXPECT().FetchRows(ctx).DoAndReturn(func(context.Context) ([]domain.RawRow, error) {
		panic("index out of range")
	})
	s.syncState.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	result, err := s.pipeline.Run(ctx)

	s.Nil(result)
	s.ErrorIs(err, domain.ErrUnexpected)
	s.Contains(err.Error(), "index out of range")
}

func (s *PipelineTestSuite) TestRun_PublishFailureKeepsSuccess() {
	ctx := context.Background()

	s.source.EXPECT().FetchRows(ctx).Return([]domain.RawRow{{"P3", "1", "Small", "Red"}}, nil)
	s.expectStoredOnce(ctx, "P3", 0)
	s.draws.EXPECT().Insert(ctx, gomock.Any()).Return(true, nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("channel closed"))
	s.syncState.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	result, err := s.pipeline.Run(ctx)

	s.Require().NoError(err)
	s.True(result.Inserted)
	s.False(result.Published)
}

func (s *PipelineTestSuite) TestRun_PublisherNil() {
	ctx := context.Background()
	pipeline := s.newPipeline(nil)

	s.source.EXPECT().FetchRows(ctx).Return([]domain.RawRow{{"P4", "8", "Big", "Red"}}, nil)
	s.expectStoredOnce(ctx, "P4", 0)
	s.draws.EXPECT().Insert(ctx, gomock.Any()).Return(true, nil)
	s.syncState.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	result, err := pipeline.Run(ctx)

	s.Require().NoError(err)
	s.True(result.Inserted)
	s.False(result.Published)
}

func (s *PipelineTestSuite) TestRun_SyncStateFailureIgnored() {
	ctx := context.Background()

	s.source.EXPECT().FetchRows(ctx).Return([]domain.RawRow{{"P2", "10", "Small", "Green"}}, nil)
	s.expectStoredOnce(ctx, "P2", 1)
	s.syncState.EXPECT().Update(ctx, gomock.Any()).Return(errors.New("relation does not exist"))

	result, err := s.pipeline.Run(ctx)

	s.Require().NoError(err)
	s.False(result.Inserted)
}
