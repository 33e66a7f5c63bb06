package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/taskgpt/ai/metrics"
	"github.com/hrygo/taskgpt/ai/mocks"
)

type sleepRecorder struct {
	waits []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func newTestService(m *mocks.MockLLM, rec *sleepRecorder) *Service {
	return NewService(Config{LLM: m, EnableCache: true, Sleep: rec.sleep})
}

func TestClassify_EmptyInputSkipsModel(t *testing.T) {
	m := mocks.NewMockLLM()
	svc := newTestService(m, &sleepRecorder{})

	for _, in := range []string{"", "   ", "\n\t"} {
		got := svc.Classify(context.Background(), in, MenuOptions)
		assert.False(t, got.Recognized())
	}
	assert.Equal(t, 0, m.CallCount())
}

func TestClassify_RuleLayer(t *testing.T) {
	m := mocks.NewMockLLM()
	svc := newTestService(m, &sleepRecorder{})
	ctx := context.Background()

	assert.Equal(t, 2, svc.Classify(ctx, " 2 ", MenuOptions).Code)
	assert.Equal(t, 1, svc.Classify(ctx, "View", MenuOptions).Code)
	assert.Equal(t, 4, svc.Classify(ctx, "remove task!", MenuOptions).Code)
	assert.Equal(t, 6, svc.Classify(ctx, "date range", ViewOptions).Code)
	assert.Equal(t, 0, m.CallCount())
}

func TestClassify_ModelReplies(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{"bare code", "2", 2},
		{"code with label", "2. Add a new task", 2},
		{"code with paren", "3)", 3},
		{"quoted code", `"4"`, 4},
		{"label", "Edit a task", 5},
		{"none", "None", 0},
		{"out of range", "9", 0},
		{"prose", "I think the user wants option two", 0},
		{"fenced", "```\n1\n```", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mocks.NewMockLLM().WithResponse(tt.reply, "pick up some groceries")
			svc := newTestService(m, &sleepRecorder{})
			got := svc.Classify(context.Background(), "I want to pick up some groceries", MenuOptions)
			assert.Equal(t, tt.want, got.Code)
			assert.Equal(t, tt.want > 0, got.Recognized())
			assert.Equal(t, 1, m.CallCount())
		})
	}
}

func TestClassify_StructuredReplies(t *testing.T) {
	ctx := context.Background()

	m := mocks.NewMockLLM().
		WithResponse(`{"status":"specific","message":"Here are your overdue tasks","choice":"3"}`, "what's late for me").
		WithResponse("```json\n{\"status\":\"specific\",\"message\":\"\",\"choice\":1}\n```", "what did I finish").
		WithResponse(`{"status":"ambiguous","message":"Which tasks? Completed, Overdue or All?","choice":null}`, "show me stuff").
		WithResponse(`{"status":"specific","choice":"42"}`, "weird one").
		WithResponse(`{"status": broken`, "broken json")
	svc := newTestService(m, &sleepRecorder{})

	got := svc.Classify(ctx, "what's late for me", ViewOptions)
	assert.Equal(t, Classification{Status: StatusSpecific, Code: ViewOverdue, Message: "Here are your overdue tasks"}, got)

	got = svc.Classify(ctx, "what did I finish", ViewOptions)
	assert.Equal(t, ViewCompleted, got.Code)

	got = svc.Classify(ctx, "show me stuff", ViewOptions)
	assert.Equal(t, StatusAmbiguous, got.Status)
	assert.Equal(t, 0, got.Code)
	assert.Contains(t, got.Message, "Which tasks?")
	assert.False(t, got.Recognized())

	got = svc.Classify(ctx, "weird one", ViewOptions)
	assert.False(t, got.Recognized())

	got = svc.Classify(ctx, "broken json", ViewOptions)
	assert.Equal(t, Unrecognized, got)
}

func TestClassify_StructuredPromptListsOptions(t *testing.T) {
	m := mocks.NewMockLLM()
	svc := newTestService(m, &sleepRecorder{})
	svc.Classify(context.Background(), "anything pending?", ViewOptions)

	require.Len(t, m.Prompts(), 1)
	prompt := m.Prompts()[0]
	assert.Contains(t, prompt, "6. Tasks due in a date range")
	assert.Contains(t, prompt, `"status": "specific" | "ambiguous"`)
	assert.Contains(t, prompt, `"anything pending?"`)
}

func TestClassify_RetriesWithBackoff(t *testing.T) {
	m := mocks.NewMockLLM().
		WithError(errors.New("503"), "water the plants").
		WithError(errors.New("503"), "water the plants").
		WithResponse("2", "water the plants")
	rec := &sleepRecorder{}
	svc := newTestService(m, rec)

	got := svc.Classify(context.Background(), "water the plants", MenuOptions)
	assert.Equal(t, 2, got.Code)
	assert.Equal(t, 3, m.CallCount())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.waits)
}

func TestClassify_GivesUpAfterThreeFailures(t *testing.T) {
	m := mocks.NewMockLLM().WithDefaultError(errors.New("timeout"))
	rec := &sleepRecorder{}
	svc := newTestService(m, rec)

	got := svc.Classify(context.Background(), "water the plants", MenuOptions)
	assert.Equal(t, Unrecognized, got)
	assert.Equal(t, 3, m.CallCount())
	assert.Len(t, rec.waits, 2)

	// Failures are not cached.
	svc.Classify(context.Background(), "water the plants", MenuOptions)
	assert.Equal(t, 6, m.CallCount())
}

func TestClassify_CancelledDuringBackoff(t *testing.T) {
	m := mocks.NewMockLLM().WithDefaultError(errors.New("timeout"))
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewService(Config{LLM: m, Sleep: func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}})

	got := svc.Classify(ctx, "water the plants", MenuOptions)
	assert.Equal(t, Unrecognized, got)
	assert.Equal(t, 1, m.CallCount())
}

func TestClassify_CachesModelResults(t *testing.T) {
	m := mocks.NewMockLLM().WithResponse("5", "rename my dentist task")
	svc := newTestService(m, &sleepRecorder{})
	ctx := context.Background()

	assert.Equal(t, 5, svc.Classify(ctx, "rename my dentist task", MenuOptions).Code)
	assert.Equal(t, 5, svc.Classify(ctx, "Rename  my dentist TASK", MenuOptions).Code)
	assert.Equal(t, 1, m.CallCount())
	assert.Equal(t, 1, svc.cache.Size())

	// A different option set is a different key.
	svc.Classify(ctx, "rename my dentist task", ViewOptions)
	assert.Equal(t, 2, m.CallCount())
}

func TestClassify_WithoutModel(t *testing.T) {
	svc := NewService(DefaultConfig())
	ctx := context.Background()
	assert.Equal(t, 3, svc.Classify(ctx, "3", MenuOptions).Code)
	assert.Equal(t, Unrecognized, svc.Classify(ctx, "buy bread", MenuOptions))
}

func TestClassifyIntent(t *testing.T) {
	m := mocks.NewMockLLM().
		WithResponse("2", "remind me to call mom").
		WithResponse("None", "tell me a joke")
	svc := newTestService(m, &sleepRecorder{})
	ctx := context.Background()

	assert.Equal(t, IntentAddTask, svc.ClassifyIntent(ctx, "remind me to call mom"))
	assert.Equal(t, IntentUnknown, svc.ClassifyIntent(ctx, "tell me a joke"))
	assert.Equal(t, IntentViewTasks, svc.ClassifyIntent(ctx, "1"))
	assert.Equal(t, IntentEditTask, svc.ClassifyIntent(ctx, "edit"))
}

func TestClassify_RecordsMetrics(t *testing.T) {
	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	m := mocks.NewMockLLM().WithResponse("1", "show everything")
	svc := NewService(Config{LLM: m, EnableCache: true, Metrics: exporter, Sleep: (&sleepRecorder{}).sleep})
	ctx := context.Background()

	svc.Classify(ctx, "2", MenuOptions)
	svc.Classify(ctx, "show everything", MenuOptions)
	svc.Classify(ctx, "show everything", MenuOptions)

	count, err := testutil.GatherAndCount(exporter.GetRegistry(), "taskgpt_classifier_classifications_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count) // rule, llm, cache series
	count, err = testutil.GatherAndCount(exporter.GetRegistry(), "taskgpt_ai_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOptionSet(t *testing.T) {
	assert.Equal(t, "1. View tasks\n2. Add a new task\n3. Mark a task as done\n4. Delete a task\n5. Edit a task", MenuOptions.Render())
	assert.True(t, ViewOptions.Contains(ViewDateRange))
	assert.False(t, MenuOptions.Contains(6))
	assert.Equal(t, "Overdue", ViewOptions.Label(ViewOverdue))
	assert.Equal(t, IntentDeleteTask, IntentFromMenuCode(MenuDeleteTask))
	assert.Equal(t, IntentUnknown, IntentFromMenuCode(0))
	assert.Equal(t, MenuEditTask, IntentEditTask.MenuCode())
	assert.Zero(t, IntentUnknown.MenuCode())
}
