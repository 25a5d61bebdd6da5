package models

// Mentor is the card shown on the matching page
type Mentor struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Specialty  string   `json:"specialty"`
	Campus     string   `json:"campus"`
	MatchScore float64  `json:"matchScore"`
	Tags       []string `json:"tags"`
	Bio        string   `json:"bio"`
}

// IsHighMatch is true above a 90% match score
func (m Mentor) IsHighMatch() bool {
	return m.MatchScore > 0.9
}

// BuiltinMentors is served by the matching page while the backend is unreachable
var BuiltinMentors = []Mentor{
	{
		ID:         1,
		Name:       "Sofia Rodriguez",
		Role:       "Civil Engineering - Year 4",
		Specialty:  "Calculus I & Physics",
		Campus:     string(CampusAntonioVaras),
		MatchScore: 0.98,
		Tags:       []string{"Spanish", "In-Person", "Calculus"},
		Bio:        "Top of my class in Calculus. I love helping first-year students understand the basics of derivatives and integrals.",
	},
	{
		ID:         2,
		Name:       "Thomas Anderson",
		Role:       "Computer Engineering - Year 3",
		Specialty:  "Programming & Algorithms",
		Campus:     string(CampusVinaDelMar),
		MatchScore: 0.85,
		Tags:       []string{"English", "Online", "Python"},
		Bio:        "Full Stack developer with experience in Python and JS. Can help you with your intro to programming assignments.",
	},
	{
		ID:         3,
		Name:       "Valentina Paz",
		Role:       "Industrial Engineering - Year 5",
		Specialty:  "Linear Algebra",
		Campus:     string(CampusConcepcion),
		MatchScore: 0.72,
		Tags:       []string{"Spanish", "Hybrid", "Math"},
		Bio:        "Patient tutor focusing on practical applications of algebra in industrial processes.",
	},
}
