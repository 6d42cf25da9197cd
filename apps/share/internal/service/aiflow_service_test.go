package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ShareServer/config"
	"ShareServer/model"
	"ShareServer/pkg/llm"
	"ShareServer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var aiflowLoggerOnce sync.Once

func initAIFlowTestLogger() {
	aiflowLoggerOnce.Do(func() {
		logger.ReplaceGlobal(zap.NewNop())
	})
}

type fakeProvider struct {
	generateFn func(context.Context, llm.Request) (llm.Result, error)
}

func (f *fakeProvider) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	if f.generateFn == nil {
		return llm.Result{}, nil
	}
	return f.generateFn(ctx, req)
}

// newTestAIFlow 重试间隔换成计数器，测试不真实睡眠
func newTestAIFlow(provider llm.Provider) (*aiflowServiceImpl, *int) {
	svc := NewAIFlowService(provider, config.DefaultAIFlowConfig()).(*aiflowServiceImpl)
	sleeps := 0
	svc.sleep = func(time.Duration) { sleeps++ }
	return svc, &sleeps
}

func TestFoldSummary_FirstSuccessWins(t *testing.T) {
	initAIFlowTestLogger()

	calls := 0
	svc, sleeps := newTestAIFlow(&fakeProvider{
		generateFn: func(context.Context, llm.Request) (llm.Result, error) {
			calls++
			return llm.Result{Summary: "新摘要", Suggestions: "新建议"}, nil
		},
	})

	got := svc.FoldSummary(context.Background(), SummaryPair{Summary: "旧摘要"}, &model.Update{UpdateUuid: "up-1"})
	assert.Equal(t, SummaryPair{Summary: "新摘要", Suggestions: "新建议"}, got)
	assert.Equal(t, 1, calls)
	assert.Zero(t, *sleeps)
}

func TestFoldSummary_RetriesThenSucceeds(t *testing.T) {
	initAIFlowTestLogger()

	calls := 0
	svc, sleeps := newTestAIFlow(&fakeProvider{
		generateFn: func(context.Context, llm.Request) (llm.Result, error) {
			calls++
			if calls < 3 {
				return llm.Result{}, errors.New("backend unavailable")
			}
			return llm.Result{Summary: "终于成功", Suggestions: "建议"}, nil
		},
	})

	got := svc.FoldSummary(context.Background(), SummaryPair{}, &model.Update{UpdateUuid: "up-1"})
	assert.Equal(t, "终于成功", got.Summary)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, *sleeps)
}

func TestFoldSummary_AllFailReturnsExisting(t *testing.T) {
	initAIFlowTestLogger()

	calls := 0
	svc, _ := newTestAIFlow(&fakeProvider{
		generateFn: func(context.Context, llm.Request) (llm.Result, error) {
			calls++
			return llm.Result{}, errors.New("backend unavailable")
		},
	})

	existing := SummaryPair{Summary: "旧摘要", Suggestions: "旧建议"}
	got := svc.FoldSummary(context.Background(), existing, &model.Update{UpdateUuid: "up-1"})
	assert.Equal(t, existing, got)
	assert.Equal(t, 3, calls)
}

func TestFoldSummary_EmptyResultTreatedAsFailure(t *testing.T) {
	initAIFlowTestLogger()

	calls := 0
	svc, _ := newTestAIFlow(&fakeProvider{
		generateFn: func(context.Context, llm.Request) (llm.Result, error) {
			calls++
			return llm.Result{Summary: "   ", Suggestions: ""}, nil // 全空白视为空
		},
	})

	existing := SummaryPair{Summary: "旧摘要"}
	got := svc.FoldSummary(context.Background(), existing, &model.Update{UpdateUuid: "up-1"})
	assert.Equal(t, existing, got)
	assert.Equal(t, 3, calls)
}

func TestFoldSummary_PartialEmptyFieldMergedFromExisting(t *testing.T) {
	initAIFlowTestLogger()

	svc, _ := newTestAIFlow(&fakeProvider{
		generateFn: func(context.Context, llm.Request) (llm.Result, error) {
			return llm.Result{Summary: "新摘要", Suggestions: "  "}, nil
		},
	})

	got := svc.FoldSummary(context.Background(),
		SummaryPair{Summary: "旧摘要", Suggestions: "旧建议"},
		&model.Update{UpdateUuid: "up-1"},
	)
	// 部分成功不抹掉已存的非空内容
	assert.Equal(t, "新摘要", got.Summary)
	assert.Equal(t, "旧建议", got.Suggestions)
}

func TestFoldSummary_PlaceholderStrippedButKeptAsFallback(t *testing.T) {
	initAIFlowTestLogger()

	var sentParams map[string]string
	svc, _ := newTestAIFlow(&fakeProvider{
		generateFn: func(_ context.Context, req llm.Request) (llm.Result, error) {
			sentParams = req.Params
			return llm.Result{}, errors.New("backend unavailable")
		},
	})

	placeholder := "No summary yet."
	existing := SummaryPair{Summary: placeholder, Suggestions: "旧建议"}
	got := svc.FoldSummary(context.Background(), existing, &model.Update{
		UpdateUuid: "up-1",
		Content:    "今天很开心",
		Sentiment:  "happy",
		Emoji:      "😄",
	})

	// 发送侧：占位文案剥为空，表示无历史上下文
	require.NotNil(t, sentParams)
	assert.Empty(t, sentParams["existing_summary"])
	assert.Equal(t, "旧建议", sentParams["existing_suggestions"])
	assert.Equal(t, "今天很开心", sentParams["update_content"])

	// 兜底侧：返回的仍是剥离前的原值
	assert.Equal(t, existing, got)
}
