package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusResolved   IssueStatus = "RESOLVED"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// IssuePriority enumerates urgency levels.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "LOW"
	IssuePriorityMedium IssuePriority = "MEDIUM"
	IssuePriorityHigh   IssuePriority = "HIGH"
	IssuePriorityUrgent IssuePriority = "URGENT"
)

// overdueThresholdDays maps priority to the age in days after which an issue
// counts as overdue.
var overdueThresholdDays = map[IssuePriority]int{
	IssuePriorityUrgent: 1,
	IssuePriorityHigh:   3,
	IssuePriorityMedium: 7,
	IssuePriorityLow:    14,
}

// Issue is the aggregate for trackable units of work. AgeInDays, overdue state
// and comment counts are derived at read time, never stored.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      IssueStatus        `bson:"status"`
	Priority    IssuePriority      `bson:"priority"`
	Assignee    string             `bson:"assignee,omitempty"`
	Author      primitive.ObjectID `bson:"author"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

// AgeInDays returns ceil(|now - createdAt| / 1 day).
func (i *Issue) AgeInDays(now time.Time) int {
	diff := now.Sub(i.CreatedAt)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// IsOverdue reports whether the issue age exceeds the threshold for its
// priority. Unknown priorities fall back to the LOW threshold.
func (i *Issue) IsOverdue(now time.Time) bool {
	threshold, ok := overdueThresholdDays[i.Priority]
	if !ok {
		threshold = overdueThresholdDays[IssuePriorityLow]
	}
	return i.AgeInDays(now) > threshold
}

// ValidIssueStatus reports enum membership.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

// ValidIssuePriority reports enum membership.
func ValidIssuePriority(p IssuePriority) bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityUrgent:
		return true
	}
	return false
}

// IssueStats aggregates per-author issue counts and completion metrics.
type IssueStats struct {
	Total          int64   `json:"total"`
	Open           int64   `json:"open"`
	InProgress     int64   `json:"inProgress"`
	Resolved       int64   `json:"resolved"`
	Closed         int64   `json:"closed"`
	Solved         int64   `json:"solved"`
	Ongoing        int64   `json:"ongoing"`
	CompletionRate float64 `json:"completionRate"`
}

// DeriveStats computes the statistics record from raw per-status counts.
// CompletionRate is solved/total*100 rounded to one decimal, 0 when empty.
func DeriveStats(counts map[IssueStatus]int64) IssueStats {
	stats := IssueStats{
		Open:       counts[IssueStatusOpen],
		InProgress: counts[IssueStatusInProgress],
		Resolved:   counts[IssueStatusResolved],
		Closed:     counts[IssueStatusClosed],
	}
	stats.Total = stats.Open + stats.InProgress + stats.Resolved + stats.Closed
	stats.Solved = stats.Resolved + stats.Closed
	stats.Ongoing = stats.Open + stats.InProgress
	if stats.Total > 0 {
		rate := float64(stats.Solved) / float64(stats.Total) * 100
		stats.CompletionRate = math.Round(rate*10) / 10
	}
	return stats
}
