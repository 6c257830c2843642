package handler

import (
	"net/http"

	"github.com/acadialab/appointbook/internal/modules/admin/dto"
	adminService "github.com/acadialab/appointbook/internal/modules/admin/service"
	"github.com/acadialab/appointbook/pkg/response"
	"github.com/acadialab/appointbook/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) CreateTeacher(c *gin.Context) {
	var input dto.CreateTeacherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profile, err := h.adminService.CreateTeacher(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateTeacherResponse{Profile: profile})
}

func (h *AdminHandler) DeleteTeacher(c *gin.Context) {
	uid := c.Param("uid")
	if err := h.adminService.DeleteTeacher(c.Request.Context(), uid); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "teacher deleted successfully"})
}

func (h *AdminHandler) ApproveStudent(c *gin.Context) {
	uid := c.Param("uid")
	if err := h.adminService.ApproveStudent(c.Request.Context(), uid); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "student approved"})
}

func (h *AdminHandler) GetPendingStudents(c *gin.Context) {
	profiles, err := h.adminService.PendingStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

func (h *AdminHandler) GetTeachers(c *gin.Context) {
	profiles, err := h.adminService.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profiles})
}
