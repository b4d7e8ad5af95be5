package cache

import "fmt"

// 本文件集中定义投票系统使用的缓存键名，
// 避免各模块散落地拼接字符串。

const (
	// PollListKey 缓存投票列表视图
	PollListKey = "poll_list"
)

// PollDetailKey 返回指定投票详情视图的缓存键。
func PollDetailKey(pollID uint) string {
	return fmt.Sprintf("poll_detail_%d", pollID)
}

// PollResultsKey 返回指定投票结果视图的缓存键。
func PollResultsKey(pollID uint) string {
	return fmt.Sprintf("poll_results_%d", pollID)
}
