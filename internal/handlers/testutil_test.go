package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bookcircle/backend/internal/models"
	"github.com/bookcircle/backend/internal/repositories"
	"github.com/bookcircle/backend/validators"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. They mirror the
// document-store semantics the Mongo implementations rely on:
// $addToSet-style set membership and insertion-order preservation.

type memUserRepo struct {
	users []*models.User
	seq   int
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{} }

func (r *memUserRepo) nextTime() time.Time {
	r.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
}

func (r *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repositories.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = r.nextTime()
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	r.users = append(r.users, user)
	return nil
}

func (r *memUserRepo) find(id primitive.ObjectID) *models.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *memUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u := r.find(id); u != nil {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user %s: %w", id.Hex(), repositories.ErrNotFound)
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repositories.ErrNotFound)
}

func (r *memUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u := r.find(id); u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *memUserRepo) GetUsersExcluding(_ context.Context, id primitive.ObjectID) ([]models.User, error) {
	var users []models.User
	for _, u := range r.users {
		if u.ID != id {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *memUserRepo) AddFriend(_ context.Context, ownerID, targetID primitive.ObjectID) error {
	owner := r.find(ownerID)
	if owner == nil {
		return fmt.Errorf("user %s: %w", ownerID.Hex(), repositories.ErrNotFound)
	}
	for _, id := range owner.Friends {
		if id == targetID {
			return nil
		}
	}
	owner.Friends = append(owner.Friends, targetID)
	return nil
}

func (r *memUserRepo) RemoveFriend(_ context.Context, ownerID, targetID primitive.ObjectID) error {
	owner := r.find(ownerID)
	if owner == nil {
		return fmt.Errorf("user %s: %w", ownerID.Hex(), repositories.ErrNotFound)
	}
	kept := owner.Friends[:0]
	for _, id := range owner.Friends {
		if id != targetID {
			kept = append(kept, id)
		}
	}
	owner.Friends = kept
	return nil
}

type memBookRepo struct {
	books []*models.Book
	seq   int
}

func newMemBookRepo() *memBookRepo { return &memBookRepo{} }

func (r *memBookRepo) nextTime() time.Time {
	r.seq++
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
}

func (r *memBookRepo) CreateBook(_ context.Context, book *models.Book) error {
	book.ID = primitive.NewObjectID()
	book.CreatedAt = r.nextTime()
	if book.Likes == nil {
		book.Likes = []primitive.ObjectID{}
	}
	r.books = append(r.books, book)
	return nil
}

func (r *memBookRepo) find(id primitive.ObjectID) *models.Book {
	for _, b := range r.books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (r *memBookRepo) GetBookByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	if b := r.find(id); b != nil {
		copied := *b
		copied.Likes = append([]primitive.ObjectID{}, b.Likes...)
		return &copied, nil
	}
	return nil, fmt.Errorf("book %s: %w", id.Hex(), repositories.ErrNotFound)
}

func (r *memBookRepo) sortedDesc(filter func(*models.Book) bool) []models.Book {
	var books []models.Book
	for _, b := range r.books {
		if filter == nil || filter(b) {
			books = append(books, *b)
		}
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books
}

func (r *memBookRepo) GetAllBooks(_ context.Context, skip, limit int64) ([]models.Book, error) {
	books := r.sortedDesc(nil)
	if skip >= int64(len(books)) {
		return []models.Book{}, nil
	}
	books = books[skip:]
	if limit < int64(len(books)) {
		books = books[:limit]
	}
	return books, nil
}

func (r *memBookRepo) CountBooks(_ context.Context) (int64, error) {
	return int64(len(r.books)), nil
}

func (r *memBookRepo) GetBooksByUserID(_ context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	return r.sortedDesc(func(b *models.Book) bool { return b.UserID == userID }), nil
}

func (r *memBookRepo) CountBooksByUser(_ context.Context) ([]models.UserBookCount, error) {
	counts := make(map[primitive.ObjectID]int64)
	for _, b := range r.books {
		counts[b.UserID]++
	}
	var result []models.UserBookCount
	for id, n := range counts {
		result = append(result, models.UserBookCount{UserID: id, Count: n})
	}
	return result, nil
}

func (r *memBookRepo) AddLike(_ context.Context, bookID, userID primitive.ObjectID) error {
	b := r.find(bookID)
	if b == nil {
		return fmt.Errorf("book %s: %w", bookID.Hex(), repositories.ErrNotFound)
	}
	for _, id := range b.Likes {
		if id == userID {
			return nil
		}
	}
	b.Likes = append(b.Likes, userID)
	return nil
}

func (r *memBookRepo) RemoveLike(_ context.Context, bookID, userID primitive.ObjectID) error {
	b := r.find(bookID)
	if b == nil {
		return fmt.Errorf("book %s: %w", bookID.Hex(), repositories.ErrNotFound)
	}
	kept := b.Likes[:0]
	for _, id := range b.Likes {
		if id != userID {
			kept = append(kept, id)
		}
	}
	b.Likes = kept
	return nil
}

func (r *memBookRepo) DeleteBook(_ context.Context, id primitive.ObjectID) error {
	for i, b := range r.books {
		if b.ID == id {
			r.books = append(r.books[:i], r.books[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("book %s: %w", id.Hex(), repositories.ErrNotFound)
}

type memCommentRepo struct {
	comments []*models.Comment
	seq      int
}

func newMemCommentRepo() *memCommentRepo { return &memCommentRepo{} }

func (r *memCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	r.seq++
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Second)
	r.comments = append(r.comments, comment)
	return nil
}

func (r *memCommentRepo) GetCommentsByBookID(_ context.Context, bookID primitive.ObjectID) ([]models.Comment, error) {
	var comments []models.Comment
	for _, cm := range r.comments {
		if cm.BookID == bookID {
			comments = append(comments, *cm)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *memCommentRepo) CountCommentsByBookID(_ context.Context, bookID primitive.ObjectID) (int64, error) {
	var n int64
	for _, cm := range r.comments {
		if cm.BookID == bookID {
			n++
		}
	}
	return n, nil
}

func (r *memCommentRepo) DeleteCommentsByBookID(_ context.Context, bookID primitive.ObjectID) error {
	kept := r.comments[:0]
	for _, cm := range r.comments {
		if cm.BookID != bookID {
			kept = append(kept, cm)
		}
	}
	r.comments = kept
	return nil
}

// memNotificationRepo is mutex-protected because handlers write
// notifications from fire-and-forget goroutines.
type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func newMemNotificationRepo() *memNotificationRepo { return &memNotificationRepo{} }

func (r *memNotificationRepo) CreateNotification(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint(len(r.notifications) + 1)
	n.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *memNotificationRepo) GetByRecipientID(recipientID string, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for i := len(r.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if r.notifications[i].RecipientID == recipientID {
			out = append(out, r.notifications[i])
		}
	}
	return out, nil
}

func (r *memNotificationRepo) GetUnreadCount(recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, notif := range r.notifications {
		if notif.RecipientID == recipientID && !notif.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) MarkAllAsRead(recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].RecipientID == recipientID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

// fakeImageStore records uploads and deletes without touching S3.
// Deletes arrive from a fire-and-forget goroutine, hence the mutex.
type fakeImageStore struct {
	mu      sync.Mutex
	uploads int
	deleted []string
	failPut bool
}

func (s *fakeImageStore) Upload(_ context.Context, dataURI string) (string, error) {
	if s.failPut {
		return "", fmt.Errorf("put failed")
	}
	if !strings.HasPrefix(dataURI, "data:image/") {
		return "", fmt.Errorf("invalid image format")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	return fmt.Sprintf("https://img.test/books/%d.png", s.uploads), nil
}

func (s *fakeImageStore) Delete(_ context.Context, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, imageURL)
	return nil
}

// newTestContext builds an Echo context with the validator registered
// and the given actor stored as the authenticated user.
func newTestContext(method, target string, body string, actor *models.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = validators.NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor != nil {
		c.Set("user", actor)
	}
	return c, rec
}

// httpStatus extracts the HTTP status carried by a handler error
func httpStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}

// mustCreateUser seeds a user directly through the repo
func mustCreateUser(repo *memUserRepo, username, email string) *models.User {
	u := &models.User{
		Username:     username,
		Email:        email,
		Password:     "x",
		ProfileImage: "https://img.test/" + username,
	}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}
