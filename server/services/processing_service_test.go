package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"costdb/internal/logging"
)

// MockPipelineRunner мок запуска конвейера
type MockPipelineRunner struct {
	mock.Mock
}

func (m *MockPipelineRunner) RunPipeline(ctx context.Context) (RunOutput, error) {
	args := m.Called(ctx)
	return args.Get(0).(RunOutput), args.Error(1)
}

// ProcessingServiceTestSuite тесты запуска конвейера из API
type ProcessingServiceTestSuite struct {
	suite.Suite
	runner  *MockPipelineRunner
	dataset *DatasetService
	service *ProcessingService
}

func (s *ProcessingServiceTestSuite) SetupTest() {
	store := newTestStore(s.T())
	writeOutputs(s.T(), store)
	s.runner = new(MockPipelineRunner)
	s.dataset = NewDatasetService(store, nil, logging.Discard())
	s.service = NewProcessingService(s.runner, s.dataset, time.Second, logging.Discard())
}

func (s *ProcessingServiceTestSuite) TearDownTest() {
	s.runner.AssertExpectations(s.T())
}

func (s *ProcessingServiceTestSuite) TestSuccessReloadsDataset() {
	s.runner.On("RunPipeline", mock.Anything).Return(RunOutput{Stdout: "pipeline complete"}, nil).Once()

	result, err := s.service.Process(context.Background())
	s.Require().NoError(err)

	s.Equal("pipeline complete", result.Output)
	s.Equal(3, result.StandardizedItems)
	s.Equal(2, result.AnalyticsRecords)
	s.Equal(1, result.AnomaliesFound)
	s.True(s.dataset.Loaded())
}

func (s *ProcessingServiceTestSuite) TestFailureCarriesOutput() {
	s.runner.On("RunPipeline", mock.Anything).
		Return(RunOutput{Stdout: "standardization ok", Stderr: "stage ANALYTICS failed", ExitCode: 1}, errors.New("exit status 1")).Once()

	_, err := s.service.Process(context.Background())
	appErr := requireAppError(s.T(), err, http.StatusInternalServerError)

	s.True(errors.Is(err, ErrProcessingFailed))
	s.False(errors.Is(err, ErrProcessingTimeout))
	s.Equal("Pipeline execution failed", appErr.UserMessage())
	s.Equal("stage ANALYTICS failed", appErr.Details["error_details"])
	s.Equal("standardization ok", appErr.Details["output"])
	s.Equal(1, appErr.Details["exit_code"])
}

func (s *ProcessingServiceTestSuite) TestTimeoutIsDistinctFromFailure() {
	s.service = NewProcessingService(s.runner, s.dataset, 20*time.Millisecond, logging.Discard())
	s.runner.On("RunPipeline", mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(RunOutput{}, context.DeadlineExceeded).Once()

	_, err := s.service.Process(context.Background())
	requireAppError(s.T(), err, http.StatusGatewayTimeout)
	s.True(errors.Is(err, ErrProcessingTimeout))
	s.False(errors.Is(err, ErrProcessingFailed))
}

func (s *ProcessingServiceTestSuite) TestSecondRunRejectedWhileInFlight() {
	started := make(chan struct{})
	release := make(chan struct{})
	s.runner.On("RunPipeline", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(RunOutput{}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = s.service.Process(context.Background())
	}()

	<-started
	_, err := s.service.Process(context.Background())
	requireAppError(s.T(), err, http.StatusConflict)
	s.True(errors.Is(err, ErrProcessingInProgress))

	close(release)
	wg.Wait()
	s.NoError(firstErr)
}

func TestProcessingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProcessingServiceTestSuite))
}

func TestExecRunner_CapturesOutputAndExitCode(t *testing.T) {
	runner := &ExecRunner{Path: "/bin/sh", Args: []string{"-c", "echo done; echo broken >&2; exit 3"}}

	out, err := runner.RunPipeline(context.Background())
	require.Error(t, err)
	assert.Equal(t, "done\n", out.Stdout)
	assert.Equal(t, "broken\n", out.Stderr)
	assert.Equal(t, 3, out.ExitCode)
}

func TestNewExecRunner_Args(t *testing.T) {
	runner, err := NewExecRunner("/usr/local/bin/costdb", "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/costdb", runner.Path)
	assert.Equal(t, []string{"run", "--config", "config.yaml"}, runner.Args)

	self, err := NewExecRunner("", "")
	require.NoError(t, err)
	assert.NotEmpty(t, self.Path)
	assert.Equal(t, []string{"run"}, self.Args)
}
