// Package types defines the request payloads accepted by the HTTP API and
// their validation rules.
package types

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrMissingFields reports a request missing one or more required fields.
// Handlers map it to a 400 response before any external call is made.
var ErrMissingFields = errors.New("Missing required fields")

var validate = validator.New()

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	Title            string `json:"title" validate:"required"`
	Company          string `json:"company" validate:"required"`
	Location         string `json:"location"`
	Type             string `json:"type"`
	Description      string `json:"description" validate:"required"`
	Requirements     string `json:"requirements" validate:"required"`
	Responsibilities string `json:"responsibilities" validate:"required"`
}

func (r *CreateJobRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrMissingFields
	}
	return nil
}

// UpdateJobRequest is the body of PUT /jobs/{id}. All fields optional;
// empty values leave the stored field unchanged.
type UpdateJobRequest struct {
	Title            string `json:"title"`
	Company          string `json:"company"`
	Location         string `json:"location"`
	Type             string `json:"type"`
	Description      string `json:"description"`
	Requirements     string `json:"requirements"`
	Responsibilities string `json:"responsibilities"`
}

// UpdateCandidateRequest is the body of PUT /candidates/{id}.
type UpdateCandidateRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email" validate:"omitempty,email"`
	LinkedinURL string   `json:"linkedinUrl"`
	Skills      []string `json:"skills"`
	Experience  string   `json:"experience"`
	Education   string   `json:"education"`
}

func (r *UpdateCandidateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrMissingFields
	}
	return nil
}

// ImportJobRequest is the body of POST /jobs/import. The posting text is
// scraped from URL; title and company must be supplied by the caller since
// listing pages rarely expose them in a recoverable form.
type ImportJobRequest struct {
	URL      string `json:"url" validate:"required,url"`
	Title    string `json:"title" validate:"required"`
	Company  string `json:"company" validate:"required"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

func (r *ImportJobRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrMissingFields
	}
	return nil
}

// EvaluateMatchRequest is the body of POST /match.
type EvaluateMatchRequest struct {
	CandidateID    string `json:"candidateId" validate:"required"`
	JobID          string `json:"jobId" validate:"required"`
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

func (r *EvaluateMatchRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrMissingFields
	}
	return nil
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (r *RegisterRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrMissingFields
	}
	return nil
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrMissingFields
	}
	return nil
}
