package model

import "time"

// Comment is free text attached to a volcano by an authenticated user.
type Comment struct {
	ID          string    `json:"id"          db:"id"`
	VolcanoID   int64     `json:"volcanoId"   db:"volcano_id"`
	AuthorEmail string    `json:"email"       db:"author_email"`
	Text        string    `json:"comment"     db:"body"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// Image is a user-submitted picture URL for a volcano.
type Image struct {
	ID          string    `json:"id"        db:"id"`
	VolcanoID   int64     `json:"volcanoId" db:"volcano_id"`
	AuthorEmail string    `json:"email"     db:"author_email"`
	URL         string    `json:"imageUrl"  db:"url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ReportOutcome is what a moderation report leaves behind.
type ReportOutcome struct {
	Reports int  `json:"reports"` // distinct reporters after this report
	Removed bool `json:"removed"` // the target reached the threshold and was deleted
}

// EruptionGuess is one user's guess of a volcano's next eruption year.
type EruptionGuess struct {
	UserEmail string    `db:"user_email"`
	VolcanoID int64     `db:"volcano_id"`
	Year      int       `db:"guessed_year"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GuessStats aggregates every guess for one volcano.
type GuessStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Median  int     `json:"median"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
}
