package handlers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/bookcircle/backend/internal/middleware"
	"github.com/bookcircle/backend/internal/models"
	"github.com/bookcircle/backend/internal/repositories"
	"github.com/bookcircle/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookHandler handles book creation, deletion and the feed
type BookHandler struct {
	bookRepository    repositories.BookRepository
	userRepository    repositories.UserRepository
	commentRepository repositories.CommentRepository
	imageStore        storage.ImageStore
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	imageStore storage.ImageStore,
) *BookHandler {
	return &BookHandler{
		bookRepository:    bookRepo,
		userRepository:    userRepo,
		commentRepository: commentRepo,
		imageStore:        imageStore,
	}
}

// RegisterBookRoutes registers book-related routes
func (h *BookHandler) RegisterBookRoutes(g *echo.Group) {
	g.POST("/books", h.CreateBook)
	g.GET("/books", h.GetFeed)
	g.GET("/books/user", h.GetOwnBooks)
	g.GET("/books/by-user/:userId", h.GetBooksByUser)
	g.GET("/books/by-user-count", h.GetBookCountsByUser)
	g.DELETE("/books/:id", h.DeleteBook)
}

// CreateBook uploads the inline image to object storage and persists
// the book record
func (h *BookHandler) CreateBook(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	var req models.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	imageURL, err := h.imageStore.Upload(c.Request().Context(), req.Image)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload image")
	}

	book := &models.Book{
		UserID:  currentUser.ID,
		Title:   req.Title,
		Caption: req.Caption,
		Rating:  req.Rating,
		Image:   imageURL,
	}

	if err := h.bookRepository.CreateBook(c.Request().Context(), book); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, book)
}

// GetFeed returns a page of books, newest first, each decorated with
// the author's compact view and the viewer's engagement and relation
// state. Offset pagination; a book created between two fetches can
// shift offsets (known limitation).
func (h *BookHandler) GetFeed(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 5
	}
	skip := int64((page - 1) * limit)

	books, err := h.bookRepository.GetAllBooks(c.Request().Context(), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalBooks, err := h.bookRepository.CountBooks(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	entries, err := h.decorate(c.Request().Context(), books, currentUser)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	totalPages := int(math.Ceil(float64(totalBooks) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"books":       entries,
		"currentPage": page,
		"totalBooks":  totalBooks,
		"totalPages":  totalPages,
	})
}

// decorate merges author, engagement and relation state into feed entries
func (h *BookHandler) decorate(ctx context.Context, books []models.Book, viewer *models.User) ([]models.FeedEntry, error) {
	authorIDs := make([]primitive.ObjectID, 0, len(books))
	seen := make(map[primitive.ObjectID]bool)
	for _, b := range books {
		if !seen[b.UserID] {
			seen[b.UserID] = true
			authorIDs = append(authorIDs, b.UserID)
		}
	}

	authors, err := h.userRepository.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	authorMap := make(map[primitive.ObjectID]models.UserCompact, len(authors))
	for _, a := range authors {
		authorMap[a.ID] = a.ToCompact()
	}

	entries := make([]models.FeedEntry, len(books))
	for i, b := range books {
		commentsCount, err := h.commentRepository.CountCommentsByBookID(ctx, b.ID)
		if err != nil {
			return nil, err
		}

		relation := models.RelationStranger
		switch {
		case b.UserID == viewer.ID:
			relation = models.RelationOwn
		case viewer.HasFriend(b.UserID):
			relation = models.RelationFriend
		}

		entries[i] = models.FeedEntry{
			Book:          b,
			Author:        authorMap[b.UserID],
			LikesCount:    len(b.Likes),
			LikedByViewer: b.HasLike(viewer.ID),
			CommentsCount: commentsCount,
			Relation:      relation,
		}
	}
	return entries, nil
}

// GetOwnBooks returns the caller's books, newest first
func (h *BookHandler) GetOwnBooks(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	books, err := h.bookRepository.GetBooksByUserID(c.Request().Context(), currentUser.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

// GetBooksByUser returns another user's books, newest first
func (h *BookHandler) GetBooksByUser(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	books, err := h.bookRepository.GetBooksByUserID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

// GetBookCountsByUser returns the books-per-user aggregation for the
// member directory
func (h *BookHandler) GetBookCountsByUser(c echo.Context) error {
	counts, err := h.bookRepository.CountBooksByUser(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}

// DeleteBook deletes a book owned by the caller. The stored image is
// released best-effort; its comments are removed with it.
func (h *BookHandler) DeleteBook(c echo.Context) error {
	currentUser := middleware.CurrentUser(c)

	bookID, err := primitive.ObjectIDFromHex(c.Param("id"))
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

	if book.UserID != currentUser.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	// Release the stored image; failure never blocks the record delete
	if book.Image != "" {
		go func(imageURL string) {
			if err := h.imageStore.Delete(context.Background(), imageURL); err != nil {
				log.Printf("Error deleting image from object storage: %v", err)
			}
		}(book.Image)
	}

	if err := h.bookRepository.DeleteBook(c.Request().Context(), bookID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Comments must not outlive the book
	if err := h.commentRepository.DeleteCommentsByBookID(c.Request().Context(), bookID); err != nil {
		log.Printf("Error cascading comment delete for book %s: %v", bookID.Hex(), err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Book deleted successfully"})
}
