package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/service/modification"
	"github.com/gin-gonic/gin"
)

type DraftHandler struct {
	service modification.ModificationUseCase
}

type toggleSectionRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type sectionURI struct {
	Section string `uri:"section" binding:"required,section"`
}

type setFieldRequest struct {
	Path  string          `json:"path" binding:"required,max=64"`
	Value json.RawMessage `json:"value" binding:"required"`
}

type draftResponse struct {
	Draft *domain.Draft      `json:"draft"`
	Valid bool               `json:"valid"`
	Error *domain.FieldError `json:"first_error,omitempty"`
}

func NewDraftHandler(service modification.ModificationUseCase) *DraftHandler {
	return &DraftHandler{service: service}
}

// Register mounts the draft routes under /bookings.
func (h *DraftHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/draft", h.open)
	router.GET("/:id/draft", h.get)
	router.DELETE("/:id/draft", h.discard)
	router.PUT("/:id/draft/sections/:section", h.toggle)
	router.PATCH("/:id/draft", h.setField)
	router.POST("/:id/draft/validate", h.validate)
	router.POST("/:id/draft/submit", h.submit)
}

func (h *DraftHandler) open(c *gin.Context) {
	d, err := h.service.OpenDraft(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DraftHandler) get(c *gin.Context) {
	d, err := h.service.GetDraft(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DraftHandler) discard(c *gin.Context) {
	if err := h.service.DiscardDraft(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DraftHandler) toggle(c *gin.Context) {
	var uri sectionURI
	if err := c.ShouldBindUri(&uri); err != nil {
		badRequest(c, err)
		return
	}
	var req toggleSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.service.ToggleSection(c.Request.Context(), caller(c), c.Param("id"), domain.Section(uri.Section), *req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DraftHandler) setField(c *gin.Context) {
	var req setFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	d, err := h.service.SetField(c.Request.Context(), caller(c), c.Param("id"), req.Path, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// validate answers 200 for both outcomes; the draft carries the error map.
func (h *DraftHandler) validate(c *gin.Context) {
	d, err := h.service.Validate(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil && !domain.IsValidation(err) {
		respondError(c, err)
		return
	}

	resp := draftResponse{Draft: d, Valid: err == nil}
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		resp.Error = &domain.FieldError{Field: verr.Field, Message: verr.Msg}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DraftHandler) submit(c *gin.Context) {
	b, err := h.service.Submit(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
