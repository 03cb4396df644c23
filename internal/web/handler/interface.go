package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
)

// Service is the interface for an API handler service.
type Service interface {
	Init(router fiber.Router, cfg *config.Config, authService *auth.Service) error
}
