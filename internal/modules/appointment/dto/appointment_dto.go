package dto

import "github.com/acadialab/appointbook/internal/entity"

type BookInput struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	DateTime    string `json:"date_time"`
	Purpose     string `json:"purpose"`
}

type BookResponse struct {
	Appointment *entity.Appointment `json:"appointment"`
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required,oneof=approved cancelled"`
}
