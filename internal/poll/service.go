package poll

import (
	"context"
	"time"

	"github.com/SlpAus/polls-backend/internal/platform/cache"
	"github.com/SlpAus/polls-backend/internal/platform/config"
	"github.com/SlpAus/polls-backend/internal/platform/ratelimit"
)

// ActionCreatePoll 是创建投票动作在限流器中的键名。
const ActionCreatePoll = "create_poll"

// Service 编排poll模块的读写流程：
// 读路径走读穿透缓存，写路径做限流准入并在提交后精确地使相关缓存失效。
type Service struct {
	repo    *Repository
	cache   *cache.Cache
	limiter *ratelimit.Limiter

	createPollRule ratelimit.Rule
	listTTL        time.Duration
	detailTTL      time.Duration
	resultsTTL     time.Duration
}

// NewService 创建poll服务。
func NewService(repo *Repository, c *cache.Cache, limiter *ratelimit.Limiter, cfg *config.Config) *Service {
	return &Service{
		repo:    repo,
		cache:   c,
		limiter: limiter,
		createPollRule: ratelimit.Rule{
			Limit:  cfg.Limits.CreatePoll.Limit,
			Window: time.Duration(cfg.Limits.CreatePoll.WindowSeconds) * time.Second,
		},
		listTTL:    time.Duration(cfg.Cache.PollListTTLSeconds) * time.Second,
		detailTTL:  time.Duration(cfg.Cache.PollDetailTTLSeconds) * time.Second,
		resultsTTL: time.Duration(cfg.Cache.PollResultsTTLSeconds) * time.Second,
	}
}

// ListPolls 返回投票列表视图的JSON负载，命中缓存时不触碰数据库。
func (s *Service) ListPolls(ctx context.Context) ([]byte, error) {
	return s.cache.GetOrCompute(ctx, cache.PollListKey, s.listTTL, func() (interface{}, error) {
		return s.repo.ListPolls()
	})
}

// GetPollDetail 返回投票详情视图的JSON负载。
func (s *Service) GetPollDetail(ctx context.Context, pollID uint) ([]byte, error) {
	key := cache.PollDetailKey(pollID)
	return s.cache.GetOrCompute(ctx, key, s.detailTTL, func() (interface{}, error) {
		p, err := s.repo.GetPoll(pollID)
		if err != nil {
			return nil, err
		}
		return buildDetail(p), nil
	})
}

// CreatePollInput 是创建投票所需的字段。
type CreatePollInput struct {
	Title       string
	Description string
	ExpiresAt   *time.Time
}

// CreatePoll 执行创建投票的完整流程：
// 限流准入 → 持久化 → 使列表缓存失效。任何失败路径都不产生持久化写入。
func (s *Service) CreatePoll(ctx context.Context, userID string, input CreatePollInput) (*Poll, error) {
	if err := s.limiter.Allow(ctx, ActionCreatePoll, userID, s.createPollRule); err != nil {
		return nil, err
	}

	p := &Poll{
		Title:       input.Title,
		Description: input.Description,
		CreatedBy:   userID,
		ExpiresAt:   input.ExpiresAt,
	}
	if err := s.repo.CreatePoll(p); err != nil {
		return nil, err
	}

	// 新投票出现后列表视图过期
	s.cache.Invalidate(ctx, cache.PollListKey)
	return p, nil
}

// CreateQuestion 在指定投票下创建问题。
// 问题与选项的编辑不触发缓存失效：列表/详情视图的陈旧性以TTL为上界。
func (s *Service) CreateQuestion(pollID uint, text string) (*Question, error) {
	q := &Question{PollID: pollID, Text: text}
	if err := s.repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// CreateChoice 在指定问题下创建选项。
func (s *Service) CreateChoice(questionID uint, text string) (*Choice, error) {
	ch := &Choice{QuestionID: questionID, Text: text}
	if err := s.repo.CreateChoice(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Results 返回投票结果视图的JSON负载。
// 票数由聚合器即时计算，缓存只在整个响应的粒度上生效。
func (s *Service) Results(ctx context.Context, pollID uint) ([]byte, error) {
	key := cache.PollResultsKey(pollID)
	return s.cache.GetOrCompute(ctx, key, s.resultsTTL, func() (interface{}, error) {
		return s.repo.ComputeResults(pollID)
	})
}

// buildDetail 将预加载好的实体树装配为详情视图结构。
func buildDetail(p *Poll) *PollDetail {
	questions := make([]QuestionDetail, 0, len(p.Questions))
	for _, q := range p.Questions {
		choices := make([]ChoiceItem, 0, len(q.Choices))
		for _, ch := range q.Choices {
			choices = append(choices, ChoiceItem{ID: ch.ID, Text: ch.Text})
		}
		questions = append(questions, QuestionDetail{
			ID:           q.ID,
			Text:         q.Text,
			Choices:      choices,
			ChoicesCount: len(choices),
		})
	}
	return &PollDetail{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		ExpiresAt:   p.ExpiresAt,
		Questions:   questions,
	}
}
