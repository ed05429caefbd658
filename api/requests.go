package api

import (
	"net/http"

	"github.com/Domenick1991/airbooking-modify/internal/service/requests"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	service requests.RequestUseCase
}

func NewRequestHandler(service requests.RequestUseCase) *RequestHandler {
	return &RequestHandler{service: service}
}

func (h *RequestHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
}

// RegisterAdmin mounts the review routes. Role checks happen in the service.
func (h *RequestHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("/pending", h.pending)
	router.POST("/:id/decision", h.respond)
}

func (h *RequestHandler) list(c *gin.Context) {
	list, err := h.service.ListRequests(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *RequestHandler) create(c *gin.Context) {
	var input requests.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	req, err := h.service.CreateRequest(c.Request.Context(), caller(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *RequestHandler) pending(c *gin.Context) {
	list, err := h.service.ListPending(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": list})
}

func (h *RequestHandler) respond(c *gin.Context) {
	var input requests.DecisionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	req, err := h.service.Respond(c.Request.Context(), caller(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
