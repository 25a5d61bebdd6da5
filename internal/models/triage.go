package models

import (
	"encoding/json"
	"fmt"
)

// TriageTag is the backend classification of a help request
type TriageTag string

const (
	TriageAcademic  TriageTag = "academica"
	TriageEmotional TriageTag = "emocional"
)

// TriageResult is computed by the external backend, never locally
type TriageResult struct {
	Tipo      TriageTag `json:"tipo"`
	Confianza float64   `json:"confianza"`
}

// Party identifies one side of a mentoring match
type Party struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// MentorCandidate is a mentor returned by backend matching
type MentorCandidate struct {
	ID               int     `json:"id"`
	FullName         string  `json:"fullName"`
	Email            string  `json:"email"`
	MatchScore       float64 `json:"matchScore"`
	Campus           Campus  `json:"campus"`
	Career           Career  `json:"career"`
	SpecialtySubject Subject `json:"specialtySubject"`
	Bio              string  `json:"bio,omitempty"`
}

// HelpOutcome is the routed outcome of a help request.
// Mentores is only meaningful for academic outcomes and is never
// serialised for emotional ones.
type HelpOutcome struct {
	Tipo     TriageTag         `json:"tipo"`
	Mensaje  string            `json:"mensaje"`
	Mentores []MentorCandidate `json:"mentores"`
}

// HelpRequestResult is the response of POST /api/students/request-help
type HelpRequestResult struct {
	Student   Party        `json:"student"`
	Triaje    TriageResult `json:"triaje"`
	Resultado HelpOutcome  `json:"resultado"`
}

// SelectMentorResult confirms a mentor selection
type SelectMentorResult struct {
	Student Party  `json:"student"`
	Mentor  Party  `json:"mentor"`
	Mensaje string `json:"mensaje"`
}

// SchedulingHandoff carries the match into the scheduling view
type SchedulingHandoff struct {
	Student Party `json:"student"`
	Mentor  Party `json:"mentor"`
}

type helpOutcomeAcademic struct {
	Tipo     TriageTag         `json:"tipo"`
	Mensaje  string            `json:"mensaje"`
	Mentores []MentorCandidate `json:"mentores"`
}

type helpOutcomeEmotional struct {
	Tipo    TriageTag `json:"tipo"`
	Mensaje string    `json:"mensaje"`
}

// MarshalJSON keeps the mentores list present for academic outcomes and absent for emotional ones
func (o HelpOutcome) MarshalJSON() ([]byte, error) {
	if o.Tipo == TriageEmotional {
		return json.Marshal(helpOutcomeEmotional{Tipo: o.Tipo, Mensaje: o.Mensaje})
	}
	mentores := o.Mentores
	if mentores == nil {
		mentores = []MentorCandidate{}
	}
	return json.Marshal(helpOutcomeAcademic{Tipo: o.Tipo, Mensaje: o.Mensaje, Mentores: mentores})
}

// Normalize enforces the outcome invariants on a decoded backend payload
func (r *HelpRequestResult) Normalize() error {
	switch r.Resultado.Tipo {
	case TriageAcademic:
		if r.Resultado.Mentores == nil {
			r.Resultado.Mentores = []MentorCandidate{}
		}
	case TriageEmotional:
		r.Resultado.Mentores = nil
	default:
		return fmt.Errorf("unknown resultado.tipo %q", r.Resultado.Tipo)
	}
	return nil
}

// IsEmotional reports whether the request was routed to welfare resources
func (r *HelpRequestResult) IsEmotional() bool {
	return r.Resultado.Tipo == TriageEmotional
}

// FindMentor returns the candidate with the given id from an academic outcome
func (r *HelpRequestResult) FindMentor(id int) (MentorCandidate, bool) {
	for _, m := range r.Resultado.Mentores {
		if m.ID == id {
			return m, true
		}
	}
	return MentorCandidate{}, false
}

// ConfidencePercent renders a confidence in [0,1] as a whole percentage
func ConfidencePercent(c float64) int {
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return int(c*100 + 0.5)
}
