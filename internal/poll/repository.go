package poll

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound 表示所引用的实体在数据库中不存在。
var ErrNotFound = errors.New("记录不存在")

// Repository 是poll模块的数据访问层。
// 所有跨实体的遍历都在这里变成显式的查询，而不是隐式的属性追踪。
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建一个数据仓库。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- 写操作 ---

// CreatePoll 持久化一个新的投票。
func (r *Repository) CreatePoll(p *Poll) error {
	return r.db.Create(p).Error
}

// CreateQuestion 在指定投票下持久化一个新问题。
// 投票不存在时返回ErrNotFound。
func (r *Repository) CreateQuestion(q *Question) error {
	var count int64
	if err := r.db.Model(&Poll{}).Where("id = ?", q.PollID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: poll %d", ErrNotFound, q.PollID)
	}
	return r.db.Create(q).Error
}

// CreateChoice 在指定问题下持久化一个新选项。
// 问题不存在时返回ErrNotFound。
func (r *Repository) CreateChoice(ch *Choice) error {
	var count int64
	if err := r.db.Model(&Question{}).Where("id = ?", ch.QuestionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: question %d", ErrNotFound, ch.QuestionID)
	}
	return r.db.Create(ch).Error
}

// CreateVote 持久化一条投票记录。
// (user, question)唯一索引冲突时原样返回gorm.ErrDuplicatedKey，由上层转换。
func (r *Repository) CreateVote(v *Vote) error {
	return r.db.Create(v).Error
}

// --- 读操作 ---

// ListPolls 返回所有投票及其问题数。
// 两次查询：一次取投票，一次按poll_id分组统计问题数。
func (r *Repository) ListPolls() ([]PollSummary, error) {
	var polls []Poll
	if err := r.db.Order("id asc").Find(&polls).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		PollID uint
		Count  int64
	}
	var rows []countRow
	err := r.db.Model(&Question{}).
		Select("poll_id, count(*) as count").
		Group("poll_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.PollID] = row.Count
	}

	summaries := make([]PollSummary, 0, len(polls))
	for _, p := range polls {
		summaries = append(summaries, PollSummary{
			ID:             p.ID,
			Title:          p.Title,
			Description:    p.Description,
			CreatedBy:      p.CreatedBy,
			CreatedAt:      p.CreatedAt,
			QuestionsCount: counts[p.ID],
		})
	}
	return summaries, nil
}

// GetPoll 返回单个投票，预加载其下所有问题与选项。
func (r *Repository) GetPoll(pollID uint) (*Poll, error) {
	var p Poll
	err := r.db.Preload("Questions.Choices").First(&p, pollID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: poll %d", ErrNotFound, pollID)
		}
		return nil, err
	}
	return &p, nil
}

// ListQuestions 返回所有问题，预加载选项。
func (r *Repository) ListQuestions() ([]Question, error) {
	var questions []Question
	err := r.db.Preload("Choices").Order("id asc").Find(&questions).Error
	return questions, err
}

// GetQuestion 返回单个问题，预加载其选项。
func (r *Repository) GetQuestion(questionID uint) (*Question, error) {
	var q Question
	err := r.db.Preload("Choices").First(&q, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question %d", ErrNotFound, questionID)
		}
		return nil, err
	}
	return &q, nil
}

// PollIDForQuestion 返回问题所属的投票ID。
func (r *Repository) PollIDForQuestion(questionID uint) (uint, error) {
	var q Question
	err := r.db.Select("id", "poll_id").First(&q, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: question %d", ErrNotFound, questionID)
		}
		return 0, err
	}
	return q.PollID, nil
}

// ListChoices 返回所有选项。
func (r *Repository) ListChoices() ([]Choice, error) {
	var choices []Choice
	err := r.db.Order("id asc").Find(&choices).Error
	return choices, err
}

// GetChoice 返回单个选项。
func (r *Repository) GetChoice(choiceID uint) (*Choice, error) {
	var ch Choice
	err := r.db.First(&ch, choiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: choice %d", ErrNotFound, choiceID)
		}
		return nil, err
	}
	return &ch, nil
}

// HasVoted 检查用户是否已对某问题投过票。
// 这只是给用户一个快速报错的优化路径，唯一索引才是正确性的保证。
func (r *Repository) HasVoted(userID string, questionID uint) (bool, error) {
	var count int64
	err := r.db.Model(&Vote{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountVotesByChoice 对一组问题做一次分组计票，返回choice_id到票数的映射。
// 单条GROUP BY查询，避免每个选项一次存储往返。
func (r *Repository) CountVotesByChoice(questionIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64)
	if len(questionIDs) == 0 {
		return counts, nil
	}

	type countRow struct {
		ChoiceID uint
		Count    int64
	}
	var rows []countRow
	err := r.db.Model(&Vote{}).
		Select("choice_id, count(*) as count").
		Where("question_id IN ?", questionIDs).
		Group("choice_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ChoiceID] = row.Count
	}
	return counts, nil
}
