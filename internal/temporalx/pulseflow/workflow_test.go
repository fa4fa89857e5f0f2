package pulseflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
)

type stubScheduler struct {
	report pulse.Report
	err    error
	calls  []bool
}

func (s *stubScheduler) Run(ctx context.Context, manual bool) (pulse.Report, error) {
	s.calls = append(s.calls, manual)
	r := s.report
	r.Manual = manual
	return r, s.err
}

func newEnv(t *testing.T, sched pulse.Scheduler) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := &Activities{Log: logger.Nop(), Scheduler: sched}
	env.RegisterWorkflow(Workflow)
	env.RegisterActivityWithOptions(acts.Run, activity.RegisterOptions{Name: ActivityRun})
	return env
}

func TestWorkflow_RunsPulse(t *testing.T) {
	sched := &stubScheduler{report: pulse.Report{Candidates: 5, Due: 3, Delivered: 2, Failed: 1}}
	env := newEnv(t, sched)

	env.ExecuteWorkflow(Workflow, Input{Manual: true})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var out Summary
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, Summary{Manual: true, Candidates: 5, Due: 3, Delivered: 2, Failed: 1}, out)
	require.Equal(t, []bool{true}, sched.calls)
}

func TestWorkflow_SchedulerErrorIsNotRetried(t *testing.T) {
	sched := &stubScheduler{err: errors.New("store down")}
	env := newEnv(t, sched)

	env.ExecuteWorkflow(Workflow, Input{})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	require.Len(t, sched.calls, 1)
}
