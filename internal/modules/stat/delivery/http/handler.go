package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garagedesk/garagedesk/internal/middleware"
	statService "github.com/garagedesk/garagedesk/internal/modules/stat/service"
	"github.com/garagedesk/garagedesk/pkg/response"
)

type StatHandler struct {
	service statService.StatService
}

func NewStatHandler(service statService.StatService) *StatHandler {
	return &StatHandler{service: service}
}

func (h *StatHandler) TicketStatistics(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.service.TicketStatistics(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, stats)
}

func (h *StatHandler) ProblemStatistics(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.service.ProblemStatistics(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, stats)
}
