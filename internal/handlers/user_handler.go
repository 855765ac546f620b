package handlers

import (
	"errors"
	"net/http"

	"github.com/bookcircle/backend/internal/middleware"
	"github.com/bookcircle/backend/internal/models"
	"github.com/bookcircle/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles user discovery and the friend list
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/all", h.GetAllUsers)
	g.GET("/users/friends", h.GetFriends)
	g.POST("/users/friends/:friendId", h.AddFriend)
	g.DELETE("/users/friends/:friendId", h.RemoveFriend)
}

// GetAllUsers retrieves every user except the caller, for the
// add-friend discovery flow
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	users, err := h.userRepository.GetUsersExcluding(c.Request().Context(), currentUser.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views := make([]models.UserCompact, len(users))
	for i, u := range users {
		views[i] = u.ToCompact()
	}
	return c.JSON(http.StatusOK, views)
}

// AddFriend adds the target user to the caller's friend set. Calling
// it again with the same target is a no-op. The edge is directional;
// the target's own friend set is untouched.
func (h *UserHandler) AddFriend(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	friendID, err := primitive.ObjectIDFromHex(c.Param("friendId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid friend ID")
	}

	if friendID == currentUser.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot add yourself as a friend")
	}

	// The target must resolve before an edge to it is created
	if _, err := h.userRepository.GetUserByID(c.Request().Context(), friendID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.userRepository.AddFriend(c.Request().Context(), currentUser.ID, friendID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Friend added successfully"})
}

// RemoveFriend filters the target out of the caller's friend set,
// regardless of prior presence
func (h *UserHandler) RemoveFriend(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	friendID, err := primitive.ObjectIDFromHex(c.Param("friendId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid friend ID")
	}

	if err := h.userRepository.RemoveFriend(c.Request().Context(), currentUser.ID, friendID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Friend removed successfully"})
}

// GetFriends resolves the caller's friend set to denormalized views,
// preserving insertion order
func (h *UserHandler) GetFriends(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	friends, err := h.userRepository.GetUsersByIDs(c.Request().Context(), currentUser.Friends)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views := make([]models.UserCompact, len(friends))
	for i, u := range friends {
		views[i] = u.ToCompact()
	}
	return c.JSON(http.StatusOK, views)
}
