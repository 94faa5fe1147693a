package repository

import "time"

type BroadcastStatus string

const (
	BroadcastStatusRunning   BroadcastStatus = "running"
	BroadcastStatusCompleted BroadcastStatus = "completed"
)

type Broadcast struct {
	ID            string
	Trigger       string
	StartedAt     time.Time
	EndedAt       *time.Time
	Status        BroadcastStatus
	TargetCount   int
	FinishedCount int
	ErroredCount  int
}

type BroadcastTarget struct {
	BroadcastID  string
	Position     int
	GuildID      string
	GuildName    string
	ChannelID    string
	ChannelName  string
	State        string
	ErrorMessage string
	StartedAt    time.Time
	EndedAt      time.Time
}
