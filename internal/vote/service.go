package vote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/cache"
	"github.com/SlpAus/polls-backend/internal/platform/config"
	"github.com/SlpAus/polls-backend/internal/platform/ratelimit"
	"github.com/SlpAus/polls-backend/internal/poll"
	"gorm.io/gorm"
)

// ActionVote 是投票动作在限流器中的键名。
const ActionVote = "vote"

// ErrAlreadyVoted 表示该用户已经对这个问题投过票。
var ErrAlreadyVoted = errors.New("已经对这个问题投过票")

// ErrChoiceMismatch 表示选项不属于投票所指向的问题。
var ErrChoiceMismatch = errors.New("选项不属于指定的问题")

// Service 是投票的准入控制器。
// 一次提交依次经过：限流准入 → 引用校验 → 提交（由唯一索引仲裁重复） → 缓存失效。
// 任何失败路径都不产生持久化写入。
type Service struct {
	repo    *poll.Repository
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	rule    ratelimit.Rule
}

// NewService 创建投票服务。
func NewService(repo *poll.Repository, c *cache.Cache, limiter *ratelimit.Limiter, cfg *config.Config) *Service {
	return &Service{
		repo:    repo,
		cache:   c,
		limiter: limiter,
		rule: ratelimit.Rule{
			Limit:  cfg.Limits.Vote.Limit,
			Window: time.Duration(cfg.Limits.Vote.WindowSeconds) * time.Second,
		},
	}
}

// Submit 处理一次投票提交。
func (s *Service) Submit(ctx context.Context, userID string, questionID, choiceID uint) (*poll.Vote, error) {
	// 1. 限流准入。被拒绝时不做任何后续操作。
	if err := s.limiter.Allow(ctx, ActionVote, userID, s.rule); err != nil {
		return nil, err
	}

	// 2. 引用校验：选项必须属于投票所指向的问题。
	choice, err := s.repo.GetChoice(choiceID)
	if err != nil {
		return nil, err
	}
	if choice.QuestionID != questionID {
		return nil, ErrChoiceMismatch
	}

	// 投票所属poll的ID在提交前就取出来，供成功后做缓存失效
	pollID, err := s.repo.PollIDForQuestion(questionID)
	if err != nil {
		return nil, err
	}

	// 3. 重复投票的快速报错路径。两个请求可以同时通过这里的检查，
	// 所以它只是优化，不是安全机制。
	voted, err := s.repo.HasVoted(userID, questionID)
	if err != nil {
		return nil, fmt.Errorf("查询投票记录失败: %w", err)
	}
	if voted {
		return nil, ErrAlreadyVoted
	}

	// 4. 提交。并发冲突由(user, question)唯一索引在存储层仲裁，
	// 恰好一个请求成功，落败者在这里拿到重复键错误。
	v := &poll.Vote{
		UserID:     userID,
		QuestionID: questionID,
		ChoiceID:   choiceID,
	}
	if err := s.repo.CreateVote(v); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("无法持久化投票记录: %w", err)
	}

	// 5. 与提交同步地使该投票的结果缓存失效，后续读取将重新计票。
	s.cache.Invalidate(ctx, cache.PollResultsKey(pollID))

	return v, nil
}
