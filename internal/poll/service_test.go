package poll_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/SlpAus/polls-backend/internal/platform/cache"
	"github.com/SlpAus/polls-backend/internal/platform/ratelimit"
	"github.com/SlpAus/polls-backend/internal/platform/testutil"
	"github.com/SlpAus/polls-backend/internal/poll"
)

// newServiceUnderTest 组装一个使用内存存储的poll服务。
func newServiceUnderTest(t *testing.T) (*poll.Service, *poll.Repository, *testutil.MemoryKV) {
	t.Helper()
	repo := poll.NewRepository(testutil.SetupTestDB(t))
	kv := testutil.NewMemoryKV()
	limiter := ratelimit.NewLimiter(testutil.NewMemoryCounters())
	svc := poll.NewService(repo, cache.New(kv), limiter, testutil.NewTestConfig())
	return svc, repo, kv
}

// TestCreatePollInvalidatesList 验证创建投票后列表缓存被同步失效，
// 下一次列表读取立即包含新投票。
func TestCreatePollInvalidatesList(t *testing.T) {
	svc, _, kv := newServiceUnderTest(t)
	ctx := context.Background()

	payload, err := svc.ListPolls(ctx)
	if err != nil {
		t.Fatalf("读取列表失败: %v", err)
	}
	var summaries []poll.PollSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		t.Fatalf("解析列表负载失败: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("初始列表应为空，实际%d项", len(summaries))
	}
	if !kv.Contains(cache.PollListKey) {
		t.Fatal("列表视图应已被缓存")
	}

	if _, err := svc.CreatePoll(ctx, testUserID, poll.CreatePollInput{Title: "Lunch?"}); err != nil {
		t.Fatalf("创建投票失败: %v", err)
	}
	if kv.Contains(cache.PollListKey) {
		t.Error("创建投票后列表缓存应被失效")
	}

	payload, err = svc.ListPolls(ctx)
	if err != nil {
		t.Fatalf("再次读取列表失败: %v", err)
	}
	if err := json.Unmarshal(payload, &summaries); err != nil {
		t.Fatalf("解析列表负载失败: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Title != "Lunch?" {
		t.Errorf("新投票应立即出现在列表中: %+v", summaries)
	}
}

// TestCreatePollRateLimited 验证create_poll动作受独立的限流规则保护，
// 被拒绝的请求不产生持久化写入。
func TestCreatePollRateLimited(t *testing.T) {
	repo := poll.NewRepository(testutil.SetupTestDB(t))
	kv := testutil.NewMemoryKV()
	limiter := ratelimit.NewLimiter(testutil.NewMemoryCounters())
	cfg := testutil.NewTestConfig()
	cfg.Limits.CreatePoll.Limit = 2
	svc := poll.NewService(repo, cache.New(kv), limiter, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.CreatePoll(ctx, testUserID, poll.CreatePollInput{Title: "ok"}); err != nil {
			t.Fatalf("第%d次创建应成功: %v", i+1, err)
		}
	}
	_, err := svc.CreatePoll(ctx, testUserID, poll.CreatePollInput{Title: "over"})
	if !errors.Is(err, ratelimit.ErrLimitExceeded) {
		t.Fatalf("超限创建应被拒绝，实际: %v", err)
	}

	summaries, err := repo.ListPolls()
	if err != nil {
		t.Fatalf("查询列表失败: %v", err)
	}
	if len(summaries) != 2 {
		t.Errorf("被拒绝的创建不应落库，期望2个投票，实际%d个", len(summaries))
	}
}

// TestDetailReadThrough 验证详情视图的读穿透：TTL内两次读取逐字节相同，
// 不存在的投票返回ErrNotFound且不污染缓存。
func TestDetailReadThrough(t *testing.T) {
	svc, repo, kv := newServiceUnderTest(t)
	ctx := context.Background()
	p, _, _ := seedPoll(t, repo)

	first, err := svc.GetPollDetail(ctx, p.ID)
	if err != nil {
		t.Fatalf("读取详情失败: %v", err)
	}
	second, err := svc.GetPollDetail(ctx, p.ID)
	if err != nil {
		t.Fatalf("二次读取详情失败: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("TTL内两次详情读取应逐字节相同")
	}

	var detail poll.PollDetail
	if err := json.Unmarshal(first, &detail); err != nil {
		t.Fatalf("解析详情负载失败: %v", err)
	}
	if detail.ID != p.ID || len(detail.Questions) != 2 {
		t.Errorf("详情内容不正确: %+v", detail)
	}
	if detail.Questions[0].ChoicesCount != 2 {
		t.Errorf("选项数不正确: %+v", detail.Questions[0])
	}

	if _, err := svc.GetPollDetail(ctx, 9999); !errors.Is(err, poll.ErrNotFound) {
		t.Fatalf("期望ErrNotFound，实际: %v", err)
	}
	if kv.Contains(cache.PollDetailKey(9999)) {
		t.Error("查询失败不应回填缓存")
	}
}

// TestResultsCachedAtResponseGranularity 验证结果视图以整个响应为粒度缓存：
// 期间直接落库的新票在TTL内不可见（没有失效事件时以TTL为陈旧上界）。
func TestResultsCachedAtResponseGranularity(t *testing.T) {
	svc, repo, _ := newServiceUnderTest(t)
	ctx := context.Background()
	p, questions, choices := seedPoll(t, repo)

	first, err := svc.Results(ctx, p.ID)
	if err != nil {
		t.Fatalf("读取结果失败: %v", err)
	}

	// 绕过投票服务直接落库，不触发缓存失效
	v := &poll.Vote{UserID: testUserID, QuestionID: questions[0].ID, ChoiceID: choices[0].ID}
	if err := repo.CreateVote(v); err != nil {
		t.Fatalf("投票失败: %v", err)
	}

	second, err := svc.Results(ctx, p.ID)
	if err != nil {
		t.Fatalf("再次读取结果失败: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("没有失效事件时TTL内的结果读取应返回缓存负载")
	}
}
