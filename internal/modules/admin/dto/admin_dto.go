package dto

import "github.com/acadialab/appointbook/internal/entity"

type CreateTeacherInput struct {
	UID        string `json:"uid" binding:"required"`
	Name       string `json:"name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required,max=100"`
	Subject    string `json:"subject" binding:"required,max=100"`
}

type CreateTeacherResponse struct {
	Profile *entity.Profile `json:"profile"`
}
