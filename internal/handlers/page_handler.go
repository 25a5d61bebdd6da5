package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mentorexpress/mentorexpress-web/internal/flow"
	"github.com/mentorexpress/mentorexpress-web/internal/handoff"
	"github.com/mentorexpress/mentorexpress-web/internal/models"
	"github.com/mentorexpress/mentorexpress-web/internal/schema"
	"github.com/mentorexpress/mentorexpress-web/internal/session"
	"github.com/mentorexpress/mentorexpress-web/internal/web"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"go.uber.org/zap"
)

const msgUnexpected = "Ocurrió un error inesperado. Por favor intenta nuevamente."

var errNoSession = errors.New("session ids missing from request context")

// Adapter is the page-side API the onboarding and matching pages call
type Adapter interface {
	RegisterStudent(ctx context.Context, profile *models.StudentProfile) (*models.StudentRecord, error)
	RegisterMentor(ctx context.Context, profile *models.MentorProfile) (*models.MentorRecord, error)
	FindMentors(ctx context.Context, criteria models.MatchCriteria) ([]models.Mentor, error)
}

// studentForm is the urlencoded shape of the student forms
type studentForm struct {
	FullName    string `form:"fullName"`
	Email       string `form:"email"`
	Campus      string `form:"campus"`
	Career      string `form:"career"`
	Subject     string `form:"subject"`
	CurrentYear int    `form:"currentYear"`
	Language    string `form:"language"`
	Modality    string `form:"modality"`
	Needs       string `form:"needs"`
}

func (f studentForm) profile() *models.StudentProfile {
	return &models.StudentProfile{
		FullName:    f.FullName,
		Email:       f.Email,
		Campus:      models.Campus(f.Campus),
		Career:      models.Career(f.Career),
		Subject:     models.Subject(f.Subject),
		CurrentYear: f.CurrentYear,
		Language:    models.Language(f.Language),
		Modality:    models.Modality(f.Modality),
		Needs:       f.Needs,
	}
}

type mentorForm struct {
	FullName         string `form:"fullName"`
	Email            string `form:"email"`
	Campus           string `form:"campus"`
	Career           string `form:"career"`
	SpecialtySubject string `form:"specialtySubject"`
	Language         string `form:"language"`
	Modality         string `form:"modality"`
	Bio              string `form:"bio"`
	Availability     string `form:"availability"`
}

func (f mentorForm) profile() *models.MentorProfile {
	return &models.MentorProfile{
		FullName:         f.FullName,
		Email:            f.Email,
		Campus:           models.Campus(f.Campus),
		Career:           models.Career(f.Career),
		SpecialtySubject: models.Subject(f.SpecialtySubject),
		Language:         models.Language(f.Language),
		Modality:         models.Modality(f.Modality),
		Bio:              f.Bio,
		Availability:     f.Availability,
	}
}

// PageHandler serves the HTML pages of the help request flow and onboarding
type PageHandler struct {
	flow     *flow.Orchestrator
	adapter  Adapter
	channels *handoff.Channels
	renderer *web.Renderer
}

// NewPageHandler creates a new page handler
func NewPageHandler(orchestrator *flow.Orchestrator, adapter Adapter, channels *handoff.Channels, renderer *web.Renderer) *PageHandler {
	return &PageHandler{flow: orchestrator, adapter: adapter, channels: channels, renderer: renderer}
}

// Form handles GET /
func (h *PageHandler) Form(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}
	view := h.flow.Form(c.Request.Context(), ids)
	c.HTML(http.StatusOK, web.PageForm, h.renderer.StudentFormPage("Encuentra a tu Mentor", view.Profile))
}

// Submit handles POST /solicitar
func (h *PageHandler) Submit(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}

	var form studentForm
	if err := c.ShouldBind(&form); err != nil {
		page := h.renderer.StudentFormPage("Encuentra a tu Mentor", form.profile())
		page.FieldErrors = &schema.FieldErrors{FormErrors: []string{"Formulario inválido"}}
		attachError(c, err)
		c.HTML(http.StatusBadRequest, web.PageForm, page)
		return
	}

	out, err := h.flow.Submit(c.Request.Context(), ids, form.profile())
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.redirect(c, out.Redirect) {
		return
	}

	page := h.renderer.StudentFormPage("Encuentra a tu Mentor", out.Profile)
	page.Error = out.Error
	page.FieldErrors = out.FieldErrors
	status := http.StatusOK
	if out.Error == "" && out.FieldErrors != nil {
		status = http.StatusUnprocessableEntity
	}
	c.HTML(status, web.PageForm, page)
}

// Results handles GET /resultados
func (h *PageHandler) Results(c *gin.Context) {
	h.show(c, h.flow.Results, func(v flow.View) (string, *web.Page) {
		page := h.renderer.NewPage("Tus Mentores Recomendados")
		page.Result = v.Result
		return web.PageResults, page
	})
}

// SelectMentor handles POST /resultados/seleccionar/:mentorId
func (h *PageHandler) SelectMentor(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}

	// A malformed id matches no candidate and is answered like an unknown mentor
	mentorID, err := strconv.Atoi(c.Param("mentorId"))
	if err != nil {
		mentorID = 0
	}

	out, err := h.flow.SelectMentor(c.Request.Context(), ids, mentorID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.redirect(c, out.Redirect) {
		return
	}

	page := h.renderer.NewPage("Tus Mentores Recomendados")
	page.Result = out.Result
	page.Error = out.Error
	c.HTML(http.StatusOK, web.PageResults, page)
}

// ResultsBack handles POST /resultados/volver
func (h *PageHandler) ResultsBack(c *gin.Context) {
	h.act(c, h.flow.ResultsBack)
}

// Scheduling handles GET /agendar
func (h *PageHandler) Scheduling(c *gin.Context) {
	h.show(c, h.flow.Scheduling, func(v flow.View) (string, *web.Page) {
		return web.PageScheduling, h.renderer.SchedulingPage(v.Scheduling)
	})
}

// ConfirmBooking handles POST /agendar/confirmar
func (h *PageHandler) ConfirmBooking(c *gin.Context) {
	h.act(c, h.flow.ConfirmBooking)
}

// SchedulingBack handles POST /agendar/volver
func (h *PageHandler) SchedulingBack(c *gin.Context) {
	h.act(c, h.flow.SchedulingBack)
}

// Emocional handles GET /resultado/emocional
func (h *PageHandler) Emocional(c *gin.Context) {
	h.show(c, h.flow.Emocional, func(v flow.View) (string, *web.Page) {
		page := h.renderer.NewPage("Estamos Aquí para Ti")
		page.State = string(v.State)
		page.Result = v.Result
		return web.PageEmocional, page
	})
}

// Exito handles GET /resultado/exito
func (h *PageHandler) Exito(c *gin.Context) {
	h.show(c, h.flow.Exito, func(v flow.View) (string, *web.Page) {
		page := h.renderer.NewPage("Mentor Asignado")
		page.State = string(v.State)
		page.Selection = v.Selection
		return web.PageExito, page
	})
}

// Agendado handles GET /resultado/agendado
func (h *PageHandler) Agendado(c *gin.Context) {
	h.show(c, h.flow.Agendado, func(v flow.View) (string, *web.Page) {
		page := h.renderer.NewPage("Sesión Agendada")
		page.State = string(v.State)
		page.Scheduling = v.Scheduling
		return web.PageAgendado, page
	})
}

// Restart handles POST /inicio
func (h *PageHandler) Restart(c *gin.Context) {
	from := flow.State(c.PostForm("desde"))
	h.act(c, func(ctx context.Context, ids session.IDs) (flow.Outcome, error) {
		return h.flow.Restart(ctx, ids, from)
	})
}

// OnboardingStudent handles GET /onboarding/student
func (h *PageHandler) OnboardingStudent(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}
	profile, _, err := h.channels.Student.Get(c.Request.Context(), ids)
	if err != nil {
		logger.Warn("Failed to load remembered student profile", zap.Error(err))
	}
	c.HTML(http.StatusOK, web.PageOnboardingStudent, h.renderer.StudentFormPage("Registro de Estudiante", profile))
}

// RegisterStudent handles POST /onboarding/student. Registration failures do
// not block the user, who proceeds to the matching page.
func (h *PageHandler) RegisterStudent(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}

	var form studentForm
	_ = c.ShouldBind(&form) //nolint:errcheck // constraint failures are reported by Validate below
	profile := form.profile()
	if fe := schema.Validate(profile); fe != nil {
		page := h.renderer.StudentFormPage("Registro de Estudiante", profile)
		page.FieldErrors = fe
		c.HTML(http.StatusUnprocessableEntity, web.PageOnboardingStudent, page)
		return
	}

	ctx := c.Request.Context()
	if err := h.channels.Student.Put(ctx, ids, profile); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.adapter.RegisterStudent(ctx, profile); err != nil {
		logger.Warn("Student registration failed, proceeding to matching", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/matching")
}

// OnboardingMentor handles GET /onboarding/mentor
func (h *PageHandler) OnboardingMentor(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}
	profile, _, err := h.channels.Mentor.Get(c.Request.Context(), ids)
	if err != nil {
		logger.Warn("Failed to load remembered mentor profile", zap.Error(err))
	}
	c.HTML(http.StatusOK, web.PageOnboardingMentor, h.renderer.MentorFormPage(profile))
}

// RegisterMentor handles POST /onboarding/mentor
func (h *PageHandler) RegisterMentor(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}

	var form mentorForm
	_ = c.ShouldBind(&form) //nolint:errcheck // constraint failures are reported by Validate below
	profile := form.profile()
	if fe := schema.Validate(profile); fe != nil {
		page := h.renderer.MentorFormPage(profile)
		page.FieldErrors = fe
		c.HTML(http.StatusUnprocessableEntity, web.PageOnboardingMentor, page)
		return
	}

	ctx := c.Request.Context()
	if err := h.channels.Mentor.Put(ctx, ids, profile); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.adapter.RegisterMentor(ctx, profile); err != nil {
		logger.Warn("Mentor registration failed, proceeding", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Matching handles GET /matching
func (h *PageHandler) Matching(c *gin.Context) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	profile, _, err := h.channels.Student.Get(ctx, ids)
	if err != nil {
		logger.Warn("Failed to load remembered student profile", zap.Error(err))
	}

	page := h.renderer.NewPage("Tus Mentores Recomendados")
	mentors, err := h.adapter.FindMentors(ctx, models.CriteriaFromStudent(profile))
	if err != nil {
		attachError(c, err)
		page.Error = "No pudimos cargar los mentores. Por favor intenta nuevamente."
	}
	page.Mentors = mentors
	c.HTML(http.StatusOK, web.PageMatching, page)
}

func (h *PageHandler) ids(c *gin.Context) (session.IDs, bool) {
	ids, ok := session.FromContext(c.Request.Context())
	if !ok {
		h.fail(c, errNoSession)
	}
	return ids, ok
}

// show renders a guarded flow page or follows its redirect
func (h *PageHandler) show(c *gin.Context, load func(context.Context, session.IDs) (flow.View, error), build func(flow.View) (string, *web.Page)) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}

	view, err := load(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.redirect(c, view.Redirect) {
		return
	}

	name, page := build(view)
	c.HTML(http.StatusOK, name, page)
}

// act runs a POST flow action and answers with its redirect
func (h *PageHandler) act(c *gin.Context, action func(context.Context, session.IDs) (flow.Outcome, error)) {
	ids, ok := h.ids(c)
	if !ok {
		return
	}

	out, err := action(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.redirect(c, out.Redirect) {
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (h *PageHandler) redirect(c *gin.Context, to string) bool {
	if to == "" {
		return false
	}
	c.Redirect(http.StatusSeeOther, to)
	return true
}

func (h *PageHandler) fail(c *gin.Context, err error) {
	attachError(c, err)
	logger.Error("Page request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	page := h.renderer.StudentFormPage("Encuentra a tu Mentor", nil)
	page.Error = msgUnexpected
	c.HTML(http.StatusInternalServerError, web.PageForm, page)
}
