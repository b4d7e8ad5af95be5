package poll

// ComputeResults 按需计算一个投票的完整结果视图。
// 两次存储往返：一次预加载投票及其问题与选项，一次对所有问题分组计票。
// 票数永远从持久化的投票记录即时统计，本函数自身不做任何缓存。
func (r *Repository) ComputeResults(pollID uint) (*PollResults, error) {
	p, err := r.GetPoll(pollID)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]uint, 0, len(p.Questions))
	for _, q := range p.Questions {
		questionIDs = append(questionIDs, q.ID)
	}

	counts, err := r.CountVotesByChoice(questionIDs)
	if err != nil {
		return nil, err
	}

	results := make([]QuestionResult, 0, len(p.Questions))
	for _, q := range p.Questions {
		choices := make([]ChoiceResult, 0, len(q.Choices))
		for _, ch := range q.Choices {
			choices = append(choices, ChoiceResult{
				ID:         ch.ID,
				Text:       ch.Text,
				VotesCount: counts[ch.ID],
			})
		}
		results = append(results, QuestionResult{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Choices:      choices,
		})
	}

	return &PollResults{
		PollID:  p.ID,
		Title:   p.Title,
		Results: results,
	}, nil
}
