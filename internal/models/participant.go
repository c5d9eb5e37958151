package models

// Participant is a person taking part in the study group.
type Participant struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info"`
	Age         *int64  `json:"age"`

	// Gender is "M", "F" or nil.
	Gender      *string `json:"gender"`
	MainAddress *string `json:"main_address"`
	Locality    *string `json:"locality"`

	// DateJoined is a "YYYY-MM-DD" date. Defaults to the creation day.
	DateJoined string `json:"date_joined"`

	// ReferredByParticipantID links to the participant who brought this one.
	// Set to nil by the store when the referrer is deleted.
	ReferredByParticipantID *int64 `json:"referred_by_participant_id"`

	// ReferrerName is populated on reads by joining the referrer row.
	ReferrerName *string `json:"referrer_name"`

	BaptismInterest bool `json:"baptism_interest"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// BaptismCandidate is a participant who expressed interest in baptism.
type BaptismCandidate struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info"`
	Locality    *string `json:"locality"`
}
