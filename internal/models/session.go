package models

// DateLayout is the layout of every calendar date exchanged with clients and stored in SQLite.
const DateLayout = "2006-01-02"

// StudySession is a single meeting of the study group.
// SessionDate is unique: there is at most one session per calendar date.
type StudySession struct {
	ID          int64   `json:"id"`
	SessionDate string  `json:"session_date"`
	Topic       *string `json:"topic"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}
