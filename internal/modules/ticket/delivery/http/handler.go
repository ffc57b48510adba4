package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garagedesk/garagedesk/internal/middleware"
	"github.com/garagedesk/garagedesk/internal/model"
	ticketDto "github.com/garagedesk/garagedesk/internal/modules/ticket/dto"
	ticketService "github.com/garagedesk/garagedesk/internal/modules/ticket/service"
	"github.com/garagedesk/garagedesk/pkg/response"
	"github.com/garagedesk/garagedesk/pkg/validator"
)

type TicketHandler struct {
	service ticketService.TicketService
}

func NewTicketHandler(service ticketService.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req ticketDto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	ticket, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Ticket created successfully", ticket)
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q ticketDto.ListTicketsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	tickets, total, err := h.service.List(c.Request.Context(), actor, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	q.Normalize()
	c.JSON(http.StatusOK, response.Page{
		Data:        tickets,
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
		Total:       total,
	})
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	ticket, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, ticket)
}

func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req ticketDto.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	ticket, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Ticket updated successfully", ticket)
}

func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Ticket deleted successfully", nil)
}

func (h *TicketHandler) AcceptTicket(c *gin.Context) {
	h.action(c, h.service.Accept, "Ticket accepted successfully")
}

func (h *TicketHandler) StartTicket(c *gin.Context) {
	h.action(c, h.service.Start, "Work started on ticket")
}

func (h *TicketHandler) CompleteTicket(c *gin.Context) {
	h.action(c, h.service.Complete, "Ticket marked as completed")
}

func (h *TicketHandler) CloseTicket(c *gin.Context) {
	h.action(c, h.service.Close, "Ticket closed")
}

type ticketAction func(ctx context.Context, actor model.User, id uuid.UUID) (*model.Ticket, error)

func (h *TicketHandler) action(c *gin.Context, fn ticketAction, message string) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	ticket, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, message, ticket)
}

func (h *TicketHandler) actorAndID(c *gin.Context) (model.User, uuid.UUID, bool) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return model.User{}, uuid.Nil, false
	}

	var uri ticketDto.TicketURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return model.User{}, uuid.Nil, false
	}

	id, err := uuid.Parse(uri.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return model.User{}, uuid.Nil, false
	}

	return actor, id, true
}
