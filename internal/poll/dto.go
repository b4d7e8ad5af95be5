package poll

import "time"

// 本文件定义各只读视图的响应结构。
// 这些结构会被序列化后整体写入缓存，字段顺序即响应字段顺序。

// PollSummary 是投票列表视图中的单项。
type PollSummary struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	QuestionsCount int64     `json:"questions_count"`
}

// ChoiceItem 是详情视图中的选项。
type ChoiceItem struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionDetail 是详情视图中的问题，内嵌其所有选项。
type QuestionDetail struct {
	ID           uint         `json:"id"`
	Text         string       `json:"text"`
	Choices      []ChoiceItem `json:"choices"`
	ChoicesCount int          `json:"choices_count"`
}

// PollDetail 是投票详情视图的完整结构。
type PollDetail struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiresAt   *time.Time       `json:"expires_at"`
	Questions   []QuestionDetail `json:"questions"`
}

// ChoiceResult 是结果视图中带票数的选项。
type ChoiceResult struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	VotesCount int64  `json:"votes_count"`
}

// QuestionResult 是结果视图中单个问题的统计。
type QuestionResult struct {
	QuestionID   uint           `json:"question_id"`
	QuestionText string         `json:"question_text"`
	Choices      []ChoiceResult `json:"choices"`
}

// PollResults 是整个投票的结果视图。
type PollResults struct {
	PollID  uint             `json:"poll_id"`
	Title   string           `json:"title"`
	Results []QuestionResult `json:"results"`
}
