package models

// StudentProfile represents a student form submission
type StudentProfile struct {
	FullName    string   `json:"fullName" validate:"required,min=2"`
	Email       string   `json:"email" validate:"required,email"`
	Campus      Campus   `json:"campus" validate:"required,campus"`
	Career      Career   `json:"career" validate:"required,career"`
	Subject     Subject  `json:"subject,omitempty" validate:"omitempty,subject"`
	CurrentYear int      `json:"currentYear" validate:"required,min=1,max=6"`
	Language    Language `json:"language,omitempty" validate:"omitempty,language"`
	Modality    Modality `json:"modality,omitempty" validate:"omitempty,modality"`
	Needs       string   `json:"needs" validate:"required,min=10"`
}

// MentorProfile represents a mentor onboarding submission
type MentorProfile struct {
	FullName         string   `json:"fullName" validate:"required,min=2"`
	Email            string   `json:"email" validate:"required,email"`
	Campus           Campus   `json:"campus" validate:"required,campus"`
	Career           Career   `json:"career" validate:"required,career"`
	SpecialtySubject Subject  `json:"specialtySubject" validate:"required,subject"`
	Language         Language `json:"language" validate:"required,language"`
	Modality         Modality `json:"modality" validate:"required,modality"`
	Bio              string   `json:"bio" validate:"required,min=20"`
	Availability     string   `json:"availability,omitempty" validate:"omitempty,min=10"`
}

// StudentRecord is a created student as returned by POST /api/students
type StudentRecord struct {
	ID int `json:"id"`
	StudentProfile
}

// MentorRecord is a created mentor as returned by POST /api/mentors
type MentorRecord struct {
	ID int `json:"id"`
	MentorProfile
}

// MatchCriteria filters for POST /api/matching
type MatchCriteria struct {
	Campus  Campus  `json:"campus,omitempty" validate:"omitempty,campus"`
	Subject Subject `json:"subject,omitempty"`
	Needs   string  `json:"needs,omitempty"`
}

// CriteriaFromStudent derives matching filters from a stored student profile
func CriteriaFromStudent(p *StudentProfile) MatchCriteria {
	if p == nil {
		return MatchCriteria{}
	}
	return MatchCriteria{
		Campus:  p.Campus,
		Subject: p.Subject,
		Needs:   p.Needs,
	}
}
