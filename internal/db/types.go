package db

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a stored candidate profile. Created on application
// submission; the resume text is the decoded document content, possibly
// empty when no file was uploaded.
type Candidate struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	LinkedinURL string    `json:"linkedinUrl,omitempty"`
	ResumeText  string    `json:"resumeText"`
	Skills      []string  `json:"skills"`
	Experience  string    `json:"experience"`
	Education   string    `json:"education"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Job is a stored job posting.
type Job struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Location         string    `json:"location,omitempty"`
	Type             string    `json:"type,omitempty"`
	Description      string    `json:"description"`
	Requirements     string    `json:"requirements"`
	Responsibilities string    `json:"responsibilities"`
	PostedAt         time.Time `json:"postedAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Account is a recruiter login. Password hashes only, never plaintext.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
