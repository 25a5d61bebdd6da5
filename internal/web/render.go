// Package web renders the HTML pages of the help request flow and onboarding.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"

	"github.com/mentorexpress/mentorexpress-web/config"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names
const (
	PageForm              = "form.html"
	PageResults           = "results.html"
	PageScheduling        = "scheduling.html"
	PageEmocional         = "emocional.html"
	PageExito             = "exito.html"
	PageAgendado          = "agendado.html"
	PageOnboardingStudent = "onboarding_student.html"
	PageOnboardingMentor  = "onboarding_mentor.html"
	PageMatching          = "matching.html"
)

// Page is the data every template renders from
type Page struct {
	Title       string
	State       string
	Error       string
	FieldErrors *schema.FieldErrors

	Student       *models.StudentProfile
	MentorProfile *models.MentorProfile
	Result        *models.HelpRequestResult
	Selection     *models.SelectMentorResult
	Scheduling    *models.SchedulingHandoff
	Mentors       []models.Mentor

	WidgetURL    string
	WidgetScript string
	Scripts      *Scripts
}

// FieldError returns the first message for a form field
func (p *Page) FieldError(field string) string {
	return p.FieldErrors.First(field)
}

// Renderer owns the parsed templates and the scheduling widget settings
type Renderer struct {
	templates    *template.Template
	calendlyURL  string
	widgetScript string
}

// NewRenderer parses the embedded templates
func NewRenderer(cfg config.SchedulingConfig) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl, calendlyURL: cfg.CalendlyURL, widgetScript: cfg.WidgetScriptURL}, nil
}

// Templates returns the template set for gin's HTML renderer
func (r *Renderer) Templates() *template.Template {
	return r.templates
}

// NewPage starts the data of one rendered document
func (r *Renderer) NewPage(title string) *Page {
	return &Page{Title: title, Scripts: NewScripts()}
}

// StudentFormPage prepares a student form, pre-filled from profile when present
func (r *Renderer) StudentFormPage(title string, profile *models.StudentProfile) *Page {
	p := r.NewPage(title)
	p.Student = profile
	if p.Student == nil {
		p.Student = &models.StudentProfile{}
	}
	return p
}

// MentorFormPage prepares the mentor onboarding form
func (r *Renderer) MentorFormPage(profile *models.MentorProfile) *Page {
	p := r.NewPage("Registro de Mentor")
	p.MentorProfile = profile
	if p.MentorProfile == nil {
		p.MentorProfile = &models.MentorProfile{}
	}
	return p
}

// SchedulingPage prepares the booking view for a hand-off record
func (r *Renderer) SchedulingPage(h *models.SchedulingHandoff) *Page {
	p := r.NewPage("Agenda tu Sesión de Mentoría")
	p.Scheduling = h
	p.WidgetScript = r.widgetScript
	p.WidgetURL = InlineWidgetURL(r.calendlyURL, h.Student.FullName, h.Student.Email)
	return p
}

// InlineWidgetURL builds the inline scheduling widget URL with the student prefilled
func InlineWidgetURL(base, name, email string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("hide_gdpr_banner", "1")
	if name != "" {
		q.Set("name", name)
	}
	if email != "" {
		q.Set("email", email)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Funcs returns the helpers available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"percent":    func(v float64) string { return fmt.Sprintf("%d%%", models.ConfidencePercent(v)) },
		"campuses":   func() []models.Campus { return models.Campuses },
		"careers":    func() []models.Career { return models.Careers },
		"subjects":   func() []models.Subject { return models.Subjects },
		"languages":  func() []models.Language { return models.Languages },
		"modalities": func() []models.Modality { return models.Modalities },
		"years":      func() []int { return []int{1, 2, 3, 4, 5, 6} },
		"initials":   initials,
	}
}

func initials(name string) string {
	out := make([]rune, 0, 2)
	start := true
	for _, r := range name {
		if r == ' ' {
			start = true
			continue
		}
		if start && len(out) < 2 {
			out = append(out, r)
		}
		start = false
	}
	return string(out)
}
