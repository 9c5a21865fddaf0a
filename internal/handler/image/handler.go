package image

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/popdoc-api/internal/handler"
	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/service/image"
)

type Handler struct {
	svc *image.Service
}

func NewHandler(svc *image.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/generate-image", h.Generate)
}

func (h *Handler) Generate(c *gin.Context) {
	var req model.GenerateImageRequest
	if !handler.Bind(c, &req) {
		return
	}

	resp, err := h.svc.Generate(c.Request.Context(), req.DoctorName, req.Style)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
