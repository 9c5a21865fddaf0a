package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/popdoc-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
)

type Handler struct {
	registry doctor.Registry
}

func NewHandler(registry doctor.Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.List)
		doctors.GET("/:id", h.Get)
	}
}

func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List())
}

func (h *Handler) Get(c *gin.Context) {
	d, ok := h.registry.Get(c.Param("id"))
	if !ok {
		_ = c.Error(apperrors.NotFound("doctor", doctor.ErrDoctorNotFound))
		return
	}
	c.JSON(http.StatusOK, d)
}
