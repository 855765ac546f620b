package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookcircle/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newFriendContext(method, target string, actor *models.User, friendID string) (echo.Context, *httptest.ResponseRecorder) {
	c, r := newTestContext(method, target, "", actor)
	c.SetParamNames("friendId")
	c.SetParamValues(friendID)
	return c, r
}

func TestAddFriendIdempotent(t *testing.T) {
	userRepo := newMemUserRepo()
	alice := mustCreateUser(userRepo, "alice", "alice@gmail.com")
	bob := mustCreateUser(userRepo, "bob", "bob@gmail.com")
	h := NewUserHandler(userRepo)

	for i := 0; i < 2; i++ {
		c, _ := newFriendContext(http.MethodPost, "/api/users/friends/"+bob.ID.Hex(), alice, bob.ID.Hex())
		if err := h.AddFriend(c); err != nil {
			t.Fatalf("AddFriend() call %d error = %v", i+1, err)
		}
	}

	stored := userRepo.find(alice.ID)
	if len(stored.Friends) != 1 || stored.Friends[0] != bob.ID {
		t.Fatalf("friend set after two adds = %v, want exactly [%s]", stored.Friends, bob.ID.Hex())
	}

	// The edge is directional: bob's set is untouched
	if got := len(userRepo.find(bob.ID).Friends); got != 0 {
		t.Fatalf("target friend set length = %d, want 0", got)
	}
}

func TestAddFriendRejectsSelf(t *testing.T) {
	userRepo := newMemUserRepo()
	alice := mustCreateUser(userRepo, "alice", "alice@gmail.com")
	h := NewUserHandler(userRepo)

	c, _ := newFriendContext(http.MethodPost, "/api/users/friends/"+alice.ID.Hex(), alice, alice.ID.Hex())
	if got := httpStatus(h.AddFriend(c)); got != http.StatusBadRequest {
		t.Fatalf("self add status = %d, want %d", got, http.StatusBadRequest)
	}
}

func TestAddFriendUnknownTarget(t *testing.T) {
	userRepo := newMemUserRepo()
	alice := mustCreateUser(userRepo, "alice", "alice@gmail.com")
	h := NewUserHandler(userRepo)

	ghost := primitive.NewObjectID().Hex()
	c, _ := newFriendContext(http.MethodPost, "/api/users/friends/"+ghost, alice, ghost)
	if got := httpStatus(h.AddFriend(c)); got != http.StatusNotFound {
		t.Fatalf("unknown target status = %d, want %d", got, http.StatusNotFound)
	}
}

func TestRemoveFriendIdempotent(t *testing.T) {
	userRepo := newMemUserRepo()
	alice := mustCreateUser(userRepo, "alice", "alice@gmail.com")
	bob := mustCreateUser(userRepo, "bob", "bob@gmail.com")
	userRepo.find(alice.ID).Friends = []primitive.ObjectID{bob.ID}
	h := NewUserHandler(userRepo)

	// Removing twice, the second call a no-op
	for i := 0; i < 2; i++ {
		c, _ := newFriendContext(http.MethodDelete, "/api/users/friends/"+bob.ID.Hex(), alice, bob.ID.Hex())
		if err := h.RemoveFriend(c); err != nil {
			t.Fatalf("RemoveFriend() call %d error = %v", i+1, err)
		}
	}

	if got := len(userRepo.find(alice.ID).Friends); got != 0 {
		t.Fatalf("friend set length after removal = %d, want 0", got)
	}
}

func TestGetFriendsPreservesInsertionOrder(t *testing.T) {
	userRepo := newMemUserRepo()
	alice := mustCreateUser(userRepo, "alice", "alice@gmail.com")
	carol := mustCreateUser(userRepo, "carol", "carol@gmail.com")
	bob := mustCreateUser(userRepo, "bob", "bob@gmail.com")

	// carol was added before bob; the list must keep that order
	actor := userRepo.find(alice.ID)
	actor.Friends = []primitive.ObjectID{carol.ID, bob.ID}
	h := NewUserHandler(userRepo)

	c, rec := newTestContext(http.MethodGet, "/api/users/friends", "", actor)
	if err := h.GetFriends(c); err != nil {
		t.Fatalf("GetFriends() error = %v", err)
	}

	var friends []models.UserCompact
	if err := json.Unmarshal(rec.Body.Bytes(), &friends); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(friends) != 2 || friends[0].Username != "carol" || friends[1].Username != "bob" {
		t.Fatalf("friends = %+v, want [carol bob]", friends)
	}
}

func TestGetAllUsersExcludesSelf(t *testing.T) {
	userRepo := newMemUserRepo()
	alice := mustCreateUser(userRepo, "alice", "alice@gmail.com")
	mustCreateUser(userRepo, "bob", "bob@gmail.com")
	mustCreateUser(userRepo, "carol", "carol@gmail.com")
	h := NewUserHandler(userRepo)

	c, rec := newTestContext(http.MethodGet, "/api/users/all", "", alice)
	if err := h.GetAllUsers(c); err != nil {
		t.Fatalf("GetAllUsers() error = %v", err)
	}

	var users []models.UserCompact
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	for _, u := range users {
		if u.ID == alice.ID {
			t.Fatal("discovery list contains the caller")
		}
	}
}
