package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garagedesk/garagedesk/internal/middleware"
	"github.com/garagedesk/garagedesk/internal/model"
	userDto "github.com/garagedesk/garagedesk/internal/modules/user/dto"
	userService "github.com/garagedesk/garagedesk/internal/modules/user/service"
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
	"github.com/garagedesk/garagedesk/pkg/response"
	"github.com/garagedesk/garagedesk/pkg/validator"
)

type UserHandler struct {
	service userService.UserService
}

func NewUserHandler(service userService.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q userDto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	users, total, err := h.service.List(c.Request.Context(), actor, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	q.Normalize()
	c.JSON(http.StatusOK, response.Page{
		Data:        users,
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
		Total:       total,
	})
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req userDto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "User created successfully", user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	user, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req userDto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "User updated successfully", user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *UserHandler) ListMechanics(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	mechanics, err := h.service.Mechanics(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, mechanics)
}

func (h *UserHandler) ListUserTickets(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var page commonDto.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	tickets, total, err := h.service.ListTickets(c.Request.Context(), actor, id, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	page.Normalize()
	c.JSON(http.StatusOK, response.Page{
		Data:        tickets,
		CurrentPage: page.Page,
		PerPage:     page.PerPage,
		Total:       total,
	})
}

func (h *UserHandler) ListUserCars(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	cars, err := h.service.ListCars(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, cars)
}

func (h *UserHandler) actorAndID(c *gin.Context) (model.User, uuid.UUID, bool) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return model.User{}, uuid.Nil, false
	}

	var uri userDto.UserURI
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
