package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mingleapp/backend/internal/auth"
	"github.com/mingleapp/backend/internal/content"
	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/relationships"
	"github.com/mingleapp/backend/internal/repositories"
)

// memUsers backs the user directory and the friendship graph in memory.
type memUsers struct {
	users map[string]models.User
	edges map[string]map[string]struct{}
}

func newMemUsers() *memUsers {
	return &memUsers{
		users: make(map[string]models.User),
		edges: make(map[string]map[string]struct{}),
	}
}

func (s *memUsers) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUsers) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *memUsers) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *memUsers) Search(_ context.Context, query, excludeID string) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		if user.ID == excludeID {
			continue
		}
		if containsFold(user.Username, query) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *memUsers) Update(_ context.Context, user models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUsers) SetOnline(_ context.Context, id string, online bool) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsOnline = online
	s.users[id] = user
	return nil
}

func (s *memUsers) Delete(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	delete(s.users, id)
	return user, nil
}

func (s *memUsers) AddFriend(_ context.Context, userID, friendID string) error {
	if s.edges[userID] == nil {
		s.edges[userID] = make(map[string]struct{})
	}
	s.edges[userID][friendID] = struct{}{}
	return nil
}

func (s *memUsers) Friends(_ context.Context, userID string) ([]string, error) {
	var out []string
	for id := range s.edges[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (s *memUsers) RemoveEdges(_ context.Context, userID string) error {
	delete(s.edges, userID)
	for _, peers := range s.edges {
		delete(peers, userID)
	}
	return nil
}

// memRequests stores friend requests in memory.
type memRequests struct {
	requests map[string]models.FriendRequest
}

func newMemRequests() *memRequests {
	return &memRequests{requests: make(map[string]models.FriendRequest)}
}

func (s *memRequests) Create(_ context.Context, request models.FriendRequest) error {
	for _, existing := range s.requests {
		if existing.FromID == request.FromID && existing.ToID == request.ToID {
			return repositories.ErrConflict
		}
	}
	s.requests[request.ID] = request
	return nil
}

func (s *memRequests) FindByID(_ context.Context, id string) (models.FriendRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return models.FriendRequest{}, repositories.ErrNotFound
	}
	return request, nil
}

func (s *memRequests) FindPending(_ context.Context, fromID, toID string) (models.FriendRequest, error) {
	for _, request := range s.requests {
		if request.FromID == fromID && request.ToID == toID {
			return request, nil
		}
	}
	return models.FriendRequest{}, repositories.ErrNotFound
}

func (s *memRequests) ListSent(_ context.Context, fromID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.FromID == fromID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *memRequests) ListReceived(_ context.Context, toID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.ToID == toID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *memRequests) Delete(_ context.Context, id string) error {
	if _, ok := s.requests[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

func (s *memRequests) DeleteForUser(_ context.Context, userID string) error {
	for id, request := range s.requests {
		if request.FromID == userID || request.ToID == userID {
			delete(s.requests, id)
		}
	}
	return nil
}

// memPosts, memComments and memStories store content records in memory.
type memPosts struct {
	posts map[string]models.Post
}

func newMemPosts() *memPosts { return &memPosts{posts: make(map[string]models.Post)} }

func (s *memPosts) Create(_ context.Context, post models.Post) error {
	s.posts[post.ID] = post
	return nil
}

func (s *memPosts) FindByID(_ context.Context, id string) (models.Post, error) {
	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, repositories.ErrNotFound
	}
	return post, nil
}

func (s *memPosts) List(_ context.Context) ([]models.Post, error) {
	var out []models.Post
	for _, post := range s.posts {
		out = append(out, post)
	}
	return out, nil
}

func (s *memPosts) ListByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	var out []models.Post
	for _, post := range s.posts {
		if post.AuthorID == authorID {
			out = append(out, post)
		}
	}
	return out, nil
}

func (s *memPosts) UpdateCounters(_ context.Context, id string, likes, dislikes int) error {
	post, ok := s.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	post.Likes, post.Dislikes = likes, dislikes
	s.posts[id] = post
	return nil
}

func (s *memPosts) Delete(_ context.Context, id string) error {
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *memPosts) DeleteByAuthor(_ context.Context, authorID string) ([]models.Post, error) {
	var deleted []models.Post
	for id, post := range s.posts {
		if post.AuthorID == authorID {
			deleted = append(deleted, post)
			delete(s.posts, id)
		}
	}
	return deleted, nil
}

type memComments struct {
	comments map[string]models.Comment
}

func newMemComments() *memComments {
	return &memComments{comments: make(map[string]models.Comment)}
}

func (s *memComments) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *memComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *memComments) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range s.comments {
		if comment.PostID == postID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (s *memComments) UpdateCounters(_ context.Context, id string, likes, dislikes int) error {
	comment, ok := s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Likes, comment.Dislikes = likes, dislikes
	s.comments[id] = comment
	return nil
}

func (s *memComments) DeleteByPost(_ context.Context, postID string) (int64, error) {
	var n int64
	for id, comment := range s.comments {
		if comment.PostID == postID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

func (s *memComments) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
	var n int64
	for id, comment := range s.comments {
		if comment.AuthorID == authorID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

type memStories struct {
	stories map[string]models.Story
}

func newMemStories() *memStories {
	return &memStories{stories: make(map[string]models.Story)}
}

func (s *memStories) Create(_ context.Context, story models.Story) error {
	s.stories[story.ID] = story
	return nil
}

func (s *memStories) ListByAuthors(_ context.Context, authorIDs []string) ([]models.Story, error) {
	members := make(map[string]struct{}, len(authorIDs))
	for _, id := range authorIDs {
		members[id] = struct{}{}
	}
	var out []models.Story
	for _, story := range s.stories {
		if _, ok := members[story.AuthorID]; ok {
			out = append(out, story)
		}
	}
	return out, nil
}

func (s *memStories) DeleteByAuthor(_ context.Context, authorID string) ([]models.Story, error) {
	var deleted []models.Story
	for id, story := range s.stories {
		if story.AuthorID == authorID {
			deleted = append(deleted, story)
			delete(s.stories, id)
		}
	}
	return deleted, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// testEnv wires real services over in-memory stores behind a routed mux.
type testEnv struct {
	mux          *http.ServeMux
	users        *memUsers
	requests     *memRequests
	posts        *memPosts
	comments     *memComments
	stories      *memStories
	sessions     *auth.Manager
	sessionStore *auth.InMemorySessionStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUsers()
	requests := newMemRequests()
	posts := newMemPosts()
	comments := newMemComments()
	stories := newMemStories()

	sessionStore := auth.NewInMemorySessionStore()
	sessions := auth.NewManager([]byte("test-secret"), time.Minute, time.Hour, sessionStore)
	engine := relationships.NewEngine(requests, users, users, nil, 0)
	service := content.NewService(posts, comments, stories, users, users, nil, nil, 0)
	cascader := content.NewCascader(users, posts, comments, stories, requests, sessionStore, nil, nil)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Users:         users,
		Sessions:      sessions,
		Relationships: engine,
		Content:       service,
		Cascader:      cascader,
	})

	return &testEnv{
		mux:          mux,
		users:        users,
		requests:     requests,
		posts:        posts,
		comments:     comments,
		stories:      stories,
		sessions:     sessions,
		sessionStore: sessionStore,
	}
}

func (e *testEnv) do(t *testing.T, method, target, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the HTTP surface and returns the
// profile and access token.
func (e *testEnv) register(t *testing.T, username, email string) (models.Profile, string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", registerRequest{
		Username: username,
		Email:    email,
		Password: "supersafe123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected status %d got %d: %s", email, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Profile, resp.Tokens.AccessToken
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}
