package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/garagedesk/garagedesk/internal/middleware"
	"github.com/garagedesk/garagedesk/internal/model"
	carDto "github.com/garagedesk/garagedesk/internal/modules/car/dto"
	carService "github.com/garagedesk/garagedesk/internal/modules/car/service"
	commonDto "github.com/garagedesk/garagedesk/pkg/dto"
	"github.com/garagedesk/garagedesk/pkg/response"
	"github.com/garagedesk/garagedesk/pkg/validator"
)

type CarHandler struct {
	service carService.CarService
}

func NewCarHandler(service carService.CarService) *CarHandler {
	return &CarHandler{service: service}
}

func (h *CarHandler) CreateCar(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req carDto.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	car, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "Car created successfully", car)
}

func (h *CarHandler) ListCars(c *gin.Context) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q carDto.ListCarsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	cars, total, err := h.service.List(c.Request.Context(), actor, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	q.Normalize()
	c.JSON(http.StatusOK, response.Page{
		Data:        cars,
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
		Total:       total,
	})
}

func (h *CarHandler) GetCar(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	car, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, car)
}

func (h *CarHandler) UpdateCar(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req carDto.UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	car, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Car updated successfully", car)
}

func (h *CarHandler) DeleteCar(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Car deleted successfully", nil)
}

func (h *CarHandler) ListCarTickets(c *gin.Context) {
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

func (h *CarHandler) GetCarHistory(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	history, err := h.service.History(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Data(c, http.StatusOK, history)
}

func (h *CarHandler) actorAndID(c *gin.Context) (model.User, uuid.UUID, bool) {
	actor, err := middleware.Actor(c)
	if err != nil {
		response.Error(c, err)
		return model.User{}, uuid.Nil, false
	}

	var uri carDto.CarURI
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
