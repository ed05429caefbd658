package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FareHandler struct {
	service flights.FareUseCase
}

type fareQuery struct {
	Origin      string `form:"origin" binding:"required"`
	Destination string `form:"destination" binding:"required"`
}

func NewFareHandler(service flights.FareUseCase) *FareHandler {
	return &FareHandler{service: service}
}

func (h *FareHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *FareHandler) list(c *gin.Context) {
	var q fareQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	fares, err := h.service.ListCandidateFares(c.Request.Context(), q.Origin, q.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fares": fares})
}

func (h *FareHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, domain.ValidationError{Field: "id", Msg: "fare id must be a positive number"})
		return
	}

	fare, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fare)
}
