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

// CommentHandler handles comments on books
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	bookRepository         repositories.BookRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		bookRepository:         bookRepo,
		userRepository:         userRepo,
		notificationRepository: notificationRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/books/:bookId/comments", h.CreateComment)
	g.GET("/books/:bookId/comments", h.GetComments)
}

// CreateComment creates a new comment on a book. The book must
// resolve at creation time; a comment cannot precede its book.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid book ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	book, err := h.bookRepository.GetBookByID(c.Request().Context(), bookID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comment := &models.Comment{
		BookID: bookID,
		UserID: currentUser.ID,
		Text:   req.Content,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Notify the book's owner
	if book.UserID != currentUser.ID {
		go func(n models.Notification) {
			if err := h.notificationRepository.CreateNotification(&n); err != nil {
				log.Printf("Error creating comment notification: %v", err)
			}
		}(models.Notification{
			Type:          "comment",
			ActorID:       currentUser.ID.Hex(),
			ActorUsername: currentUser.Username,
			RecipientID:   book.UserID.Hex(),
			BookID:        bookID.Hex(),
			Text:          req.Content,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{"comment": comment})
}

// GetComments retrieves a book's comments in creation order, each
// annotated with the commenting user's username
func (h *CommentHandler) GetComments(c echo.Context) error {
	bookID, err := primitive.ObjectIDFromHex(c.Param("bookId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid book ID")
	}

	if _, err := h.bookRepository.GetBookByID(c.Request().Context(), bookID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Book not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	comments, err := h.commentRepository.GetCommentsByBookID(c.Request().Context(), bookID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	commenterIDs := make([]primitive.ObjectID, 0, len(comments))
	seen := make(map[primitive.ObjectID]bool)
	for _, cm := range comments {
		if !seen[cm.UserID] {
			seen[cm.UserID] = true
			commenterIDs = append(commenterIDs, cm.UserID)
		}
	}
	commenters, err := h.userRepository.GetUsersByIDs(c.Request().Context(), commenterIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	usernames := make(map[primitive.ObjectID]string, len(commenters))
	for _, u := range commenters {
		usernames[u.ID] = u.Username
	}

	views := make([]models.CommentView, len(comments))
	for i, cm := range comments {
		views[i] = models.CommentView{Comment: cm, Username: usernames[cm.UserID]}
	}
	return c.JSON(http.StatusOK, views)
}
