package handlers

import "github.com/gin-gonic/gin"

// RegisterPageRoutes registers the HTML pages of the help request flow and onboarding
func RegisterPageRoutes(r gin.IRoutes, h *PageHandler) {
	r.GET("/", h.Form)
	r.POST("/solicitar", h.Submit)
	r.GET("/resultados", h.Results)
	r.POST("/resultados/seleccionar/:mentorId", h.SelectMentor)
	r.POST("/resultados/volver", h.ResultsBack)
	r.GET("/agendar", h.Scheduling)
	r.POST("/agendar/confirmar", h.ConfirmBooking)
	r.POST("/agendar/volver", h.SchedulingBack)
	r.GET("/resultado/emocional", h.Emocional)
	r.GET("/resultado/exito", h.Exito)
	r.GET("/resultado/agendado", h.Agendado)
	r.POST("/inicio", h.Restart)

	r.GET("/onboarding/student", h.OnboardingStudent)
	r.POST("/onboarding/student", h.RegisterStudent)
	r.GET("/onboarding/mentor", h.OnboardingMentor)
	r.POST("/onboarding/mentor", h.RegisterMentor)
	r.GET("/matching", h.Matching)
}

// RegisterGatewayRoutes registers the JSON gateway in front of the backend
func RegisterGatewayRoutes(group gin.IRoutes, h *GatewayHandler) {
	group.POST("/students", h.CreateStudent)
	group.POST("/mentors", h.CreateMentor)
	group.POST("/students/request-help", h.RequestHelp)
	group.POST("/students/:studentId/select-mentor/:mentorId", h.SelectMentor)
	group.POST("/matching", h.Matching)
}
