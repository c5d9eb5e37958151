package models

// DashboardStats is the merged result of the dashboard aggregate queries.
// JSON keys match what the web client reads.
type DashboardStats struct {
	TotalParticipants         int64                    `json:"totalParticipants"`
	AttendanceBySession       []SessionAttendanceCount `json:"attendanceBySession"`
	TopReferrers              []ReferrerCount          `json:"topReferrers"`
	PerfectAttendance         []ParticipantRef         `json:"perfectAttendance"`
	TodayAttendanceByLocality []LocalityCount          `json:"todayAttendanceByLocality"`
	NewParticipantsByDay      []JoinDayCount           `json:"newParticipantsByDay"`
	FutureBaptisms            []ParticipantRef         `json:"futureBaptisms"`
}

// SessionAttendanceCount is the number of attendees of one session.
type SessionAttendanceCount struct {
	SessionDate     string `json:"session_date"`
	AttendanceCount int64  `json:"attendance_count"`
}

// ReferrerCount is how many participants a participant referred.
type ReferrerCount struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ReferralCount int64  `json:"referral_count"`
}

// ParticipantRef identifies a participant by id and name.
type ParticipantRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LocalityCount is the number of attendees from one locality on a date.
type LocalityCount struct {
	Locality     string `json:"locality"`
	PresentCount int64  `json:"present_count"`
}

// JoinDayCount is the number of participants who joined on a date.
type JoinDayCount struct {
	JoinDate        string `json:"join_date"`
	NewParticipants int64  `json:"new_participants"`
}
