package models

import "time"

// Vote is a binary approval of a shown response.
type Vote string

const (
	VoteYes Vote = "SI"
	VoteNo  Vote = "NO"
)

// FeedbackRecord is one append-only row of the feedback store. At most one
// record per QuestionID ever exists.
type FeedbackRecord struct {
	Timestamp  time.Time
	QuestionID string
	UserText   string
	Tag        string
	Priority   Priority
	TopScore   float64
	Summary    string
	Vote       Vote
}

// FeedbackStats aggregates valid SI/NO votes.
type FeedbackStats struct {
	Total      int
	Yes        int
	No         int
	PercentYes float64
}
