package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/popdoc-api/internal/handler"
	"github.com/jwalitptl/popdoc-api/internal/middleware"
	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/service/profile"
)

type Handler struct {
	svc *profile.Service
}

func NewHandler(svc *profile.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the signed-in user's profile endpoints behind auth
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth gin.HandlerFunc) {
	p := r.Group("/profile", auth)
	{
		p.GET("", h.Get)
		p.PATCH("/preferences", h.UpdatePreferences)
		p.PUT("/doctor", h.SelectDoctor)
		p.GET("/medications", h.ListMedications)
		p.POST("/medications", h.AddMedication)
		p.GET("/appointments", h.ListAppointments)
		p.POST("/appointments", h.AddAppointment)
		p.POST("/wellness", h.AddWellnessCheck)
		p.GET("/chat", h.ChatHistory)
		p.POST("/chat", h.AppendChatMessage)
	}
}

func (h *Handler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req model.UpdatePreferencesRequest
	if !handler.Bind(c, &req) {
		return
	}
	prefs, err := h.svc.UpdatePreferences(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) SelectDoctor(c *gin.Context) {
	var req model.SelectDoctorRequest
	if !handler.Bind(c, &req) {
		return
	}
	d, err := h.svc.SelectDoctor(c.Request.Context(), middleware.UserID(c), req.DoctorID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) ListMedications(c *gin.Context) {
	meds, err := h.svc.ListMedications(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, meds)
}

func (h *Handler) AddMedication(c *gin.Context) {
	var req model.CreateMedicationRequest
	if !handler.Bind(c, &req) {
		return
	}
	med, err := h.svc.AddMedication(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, med)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appts, err := h.svc.ListAppointments(c.Request.Context(), middleware.UserID(c), c.Query("when"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appts)
}

func (h *Handler) AddAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.Bind(c, &req) {
		return
	}
	appt, err := h.svc.AddAppointment(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (h *Handler) AddWellnessCheck(c *gin.Context) {
	var req model.CreateWellnessCheckRequest
	if !handler.Bind(c, &req) {
		return
	}
	check, err := h.svc.AddWellnessCheck(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, check)
}

func (h *Handler) ChatHistory(c *gin.Context) {
	msgs, err := h.svc.ChatHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) AppendChatMessage(c *gin.Context) {
	var req model.CreateChatMessageRequest
	if !handler.Bind(c, &req) {
		return
	}
	msg, err := h.svc.AppendChatMessage(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
