package handler

import (
	"net/http"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/modules/appointment/dto"
	appointmentService "github.com/acadialab/appointbook/internal/modules/appointment/service"
	"github.com/acadialab/appointbook/pkg/apperror"
	"github.com/acadialab/appointbook/pkg/response"
	"github.com/acadialab/appointbook/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	appointmentService appointmentService.AppointmentService
}

func NewAppointmentHandler(appointmentService appointmentService.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentService: appointmentService,
	}
}

// Book is reachable only through the approved-student middleware, which
// stashes the caller's profile in the context.
func (h *AppointmentHandler) Book(c *gin.Context) {
	var input dto.BookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profile, exists := c.Get("profile")
	if !exists {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	appointment, err := h.appointmentService.Book(c.Request.Context(), profile.(*entity.Profile), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.BookResponse{Appointment: appointment})
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.appointmentService.SetStatus(c.Request.Context(), c.Param("id"), input.Status); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "appointment updated"})
}
