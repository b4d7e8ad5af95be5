package poll

import (
	"time"

	"gorm.io/gorm"
)

// Poll 定义了一次投票的持久化模型。
// 删除投票时级联删除其下的问题。
type Poll struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `json:"description"`
	CreatedBy   string     `gorm:"type:varchar(36);not null;index" json:"created_by"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	ExpiresAt   *time.Time `gorm:"index" json:"expires_at,omitempty"`

	Questions []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// Question 是投票中的一个决策点，拥有多个选项。
type Question struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PollID    uint      `gorm:"not null;index" json:"poll"`
	Text      string    `gorm:"size:500;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Choices []Choice `gorm:"constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

// Choice 是问题的一个可选项。
type Choice struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question"`
	Text       string `gorm:"size:255;not null" json:"text"`

	Votes []Vote `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Vote 记录一个用户对一个问题的单次、不可变的选择。
// (user_id, question_id)上的复合唯一索引在存储层保证每人每题最多一票，
// 并发提交冲突时由数据库仲裁：恰好一个成功，其余失败。
type Vote struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_votes_user_question" json:"user"`
	QuestionID uint      `gorm:"not null;index;uniqueIndex:idx_votes_user_question" json:"question"`
	ChoiceID   uint      `gorm:"not null;index" json:"choice"`
	CreatedAt  time.Time `json:"created_at"`
}

// SetupDatabase 迁移本模块的表结构。
func SetupDatabase(db *gorm.DB) error {
	return db.AutoMigrate(&Poll{}, &Question{}, &Choice{}, &Vote{})
}
