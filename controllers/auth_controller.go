package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"applyai/services"
)

// AuthController issues tokens for the single operator account. Credentials
// come from the environment: ADMIN_EMAIL and ADMIN_PASSWORD_HASH (bcrypt).
type AuthController struct {
	jwtService *services.JWTService
}

func NewAuthController(jwtService *services.JWTService) *AuthController {
	return &AuthController{jwtService: jwtService}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, AuthResponse{
			Success: false,
			Message: "Invalid request data: " + err.Error(),
		})
		return
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	passwordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminEmail == "" || passwordHash == "" {
		ctx.JSON(http.StatusServiceUnavailable, AuthResponse{
			Success: false,
			Message: "Authentication is not configured",
		})
		return
	}

	if req.Email != adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
		ctx.JSON(http.StatusUnauthorized, AuthResponse{
			Success: false,
			Message: "Invalid email or password",
		})
		return
	}

	token, err := c.jwtService.GenerateToken(req.Email)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, AuthResponse{
			Success: false,
			Message: "Failed to generate token",
		})
		return
	}

	ctx.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
	})
}
