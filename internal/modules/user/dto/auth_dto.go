package dto

import "github.com/acadialab/appointbook/internal/entity"

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,max=100"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Profile     *entity.Profile `json:"profile"`
	State       string          `json:"state"`
}

type RegisterResponse struct {
	Profile *entity.Profile `json:"profile"`
	// The fresh registration is signed out immediately: the student must be
	// approved by an admin before the first real session.
	SignedOut bool `json:"signed_out"`
}
