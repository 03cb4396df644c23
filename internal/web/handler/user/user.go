// Package user provides the user administration endpoints.
package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/auth"
	"github.com/HealthDash/HealthDash/internal/config"
	"github.com/HealthDash/HealthDash/internal/rbac"
	"github.com/HealthDash/HealthDash/internal/web/handler"
	authmiddleware "github.com/HealthDash/HealthDash/internal/web/middleware/auth"
)

const (
	// Path is the base path for user management.
	Path = "/auth/users"

	// MaxPageSize bounds the limit query parameter.
	MaxPageSize = 100

	detailUserNotFound = "User not found"
	detailUserExists   = "Username or email already exists"
	detailDeleteSelf   = "Cannot delete yourself"
)

// Service provides CRUD operations for users.
type Service struct {
	cfg  *config.Config
	auth *auth.Service
}

// Init registers routes.
func (s *Service) Init(router fiber.Router, cfg *config.Config, authService *auth.Service) error {
	if router == nil || cfg == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.auth = authService

	read := auth.RequirePermission(rbac.PermUsersRead)
	write := auth.RequirePermission(rbac.PermUsersWrite)
	// changing an existing account reads it first
	modify := auth.RequireAllPermissions(rbac.PermUsersRead, rbac.PermUsersWrite)

	router.Route(Path, func(r fiber.Router) {
		r.Use(authmiddleware.New(authService))

		r.Get(handler.RootPath, read, s.List)
		r.Post(handler.RootPath, write, s.Create)
		r.Get("/:id", read, s.Get)
		r.Put("/:id", modify, s.Update)
		r.Delete("/:id", modify, s.Delete)
	})

	return nil
}

// List returns users ordered by ID, optionally filtered by role and active
// flag and paginated with limit and offset.
func (s *Service) List(c *fiber.Ctx) error {
	var (
		role   rbac.Role
		active *bool
		err    error
	)

	if v := c.Query("role"); v != "" {
		if role, err = rbac.ParseRole(v); err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
	}

	if v := c.Query("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "active must be a boolean")
		}

		active = &b
	}

	limit := c.QueryInt("limit", 0)
	if limit < 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	offset := max(c.QueryInt("offset", 0), 0)

	users, total, err := s.auth.Users().ListUsers(c.UserContext(), role, active, limit, offset)
	if err != nil {
		return err
	}

	out := make([]*api.User, 0, len(users))
	for i := range users {
		out = append(out, api.NewUser(&users[i]))
	}

	c.Set(handler.HeaderTotalCount, strconv.FormatInt(total, 10))

	return c.JSON(out)
}

// Create adds a user.
func (s *Service) Create(c *fiber.Ctx) error {
	var req api.UserCreate
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Users().CreateUser(c.UserContext(), auth.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Inactive:  req.IsActive != nil && !*req.IsActive,
	})
	if err != nil {
		return s.fail(c, err)
	}

	log.Info().
		Uint64("actor_id", auth.CurrentUser(c).ID).
		Uint64("user_id", user.ID).
		Str("role", user.Role.String()).
		Msg("user created")

	return c.JSON(api.NewUser(user))
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	user, err := s.auth.Users().GetUserByID(c.UserContext(), id)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(api.NewUser(user))
}

// Update applies the fields present in the body.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var req api.UserUpdate
	if err = handler.Bind(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Users().UpdateUser(c.UserContext(), id, auth.UserChanges{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    req.IsActive,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(api.NewUser(user))
}

// Delete deactivates a user. Nobody can delete themselves.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	actor := auth.CurrentUser(c)

	if err = s.auth.Users().DeactivateUser(c.UserContext(), actor.ID, id); err != nil {
		return s.fail(c, err)
	}

	log.Info().Uint64("actor_id", actor.ID).Uint64("user_id", id).Msg("user deactivated")

	return c.JSON(api.Message{Message: "User deleted successfully"})
}

func (s *Service) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.Error(c, fiber.StatusNotFound, detailUserNotFound)
	case errors.Is(err, auth.ErrUserNameOrEmailExists):
		return handler.Error(c, fiber.StatusBadRequest, detailUserExists)
	case errors.Is(err, auth.ErrCannotDeleteSelf):
		return handler.Error(c, fiber.StatusBadRequest, detailDeleteSelf)
	case errors.Is(err, auth.ErrUnknownRole):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	return err
}

func userID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, "invalid user id")
	}

	return id, nil
}

