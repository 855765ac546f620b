package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/bookcircle/backend/internal/middleware"
	"github.com/bookcircle/backend/internal/models"
	"github.com/bookcircle/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeHandler handles the like toggle and the liker list
type LikeHandler struct {
	bookRepository         repositories.BookRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(bookRepo repositories.BookRepository, userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository) *LikeHandler {
	return &LikeHandler{
		bookRepository:         bookRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/books/:bookId/like", h.ToggleLike)
	g.GET("/books/:bookId/likes", h.GetLikes)
}

// ToggleLike flips the caller's membership in the book's like set and
// returns the post-flip state. Two calls return the set to its
// original state; callers needing "set liked" semantics must query
// current state first.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid book ID")
	}

	book, err := h.bookRepository.GetBookByID(c.Request().Context(), bookID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	alreadyLiked := book.HasLike(currentUser.ID)
	if alreadyLiked {
		err = h.bookRepository.RemoveLike(c.Request().Context(), bookID, currentUser.ID)
	} else {
		err = h.bookRepository.AddLike(c.Request().Context(), bookID, currentUser.ID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalLikes := len(book.Likes)
	if alreadyLiked {
		totalLikes--
	} else {
		totalLikes++
	}

	// Notify the book's owner about a fresh like
	if !alreadyLiked && book.UserID != currentUser.ID {
		go func(n models.Notification) {
			if err := h.notificationRepository.CreateNotification(&n); err != nil {
				log.Printf("Error creating like notification: %v", err)
			}
		}(models.Notification{
			Type:          "like",
			ActorID:       currentUser.ID.Hex(),
			ActorUsername: currentUser.Username,
			RecipientID:   book.UserID.Hex(),
			BookID:        bookID.Hex(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"liked":      !alreadyLiked,
		"totalLikes": totalLikes,
	})
}

// GetLikes resolves the book's like set to denormalized identities
func (h *LikeHandler) GetLikes(c echo.Context) error {
	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid book ID")
	}

	book, err := h.bookRepository.GetBookByID(c.Request().Context(), bookID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	likers, err := h.userRepository.GetUsersByIDs(c.Request().Context(), book.Likes)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	views := make([]models.UserCompact, len(likers))
	for i, u := range likers {
		views[i] = u.ToCompact()
	}
	return c.JSON(http.StatusOK, views)
}
