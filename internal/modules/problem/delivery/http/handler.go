package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garagedesk/garagedesk/internal/middleware"
	"github.com/garagedesk/garagedesk/internal/model"
	problemDto "github.com/garagedesk/garagedesk/internal/modules/problem/dto"
	problemService "github.com/garagedesk/garagedesk/internal/modules/problem/service"
	"github.com/garagedesk/garagedesk/pkg/response"
	"github.com/garagedesk/garagedesk/pkg/validator"
)

type ProblemHandler struct {
	service problemService.ProblemService
}

func NewProblemHandler(service problemService.ProblemService) *ProblemHandler {
	return &ProblemHandler{service: service}
}

func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req problemDto.CreateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	problem, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Problem created successfully", problem)
}

func (h *ProblemHandler) ListProblems(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q problemDto.ListProblemsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	problems, total, err := h.service.List(c.Request.Context(), actor, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	q.Normalize()
	c.JSON(http.StatusOK, response.Page{
		Data:        problems,
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
		Total:       total,
	})
}

func (h *ProblemHandler) GetProblem(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	problem, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, problem)
}

func (h *ProblemHandler) UpdateProblem(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req problemDto.UpdateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	problem, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Problem updated successfully", problem)
}

func (h *ProblemHandler) DeleteProblem(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Problem deleted successfully", nil)
}

func (h *ProblemHandler) actorAndID(c *gin.Context) (model.User, uuid.UUID, bool) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return model.User{}, uuid.Nil, false
	}

	var uri problemDto.ProblemURI
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
