package relationships

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mingleapp/backend/internal/models"
	"github.com/mingleapp/backend/internal/repositories"
)

type memRequestStore struct {
	requests  map[string]models.FriendRequest
	createErr error
	deleteErr error
}

func newMemRequestStore() *memRequestStore {
	return &memRequestStore{requests: make(map[string]models.FriendRequest)}
}

func (s *memRequestStore) Create(_ context.Context, request models.FriendRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.requests {
		if existing.FromID == request.FromID && existing.ToID == request.ToID {
			return repositories.ErrConflict
		}
	}
	s.requests[request.ID] = request
	return nil
}

func (s *memRequestStore) FindByID(_ context.Context, id string) (models.FriendRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return models.FriendRequest{}, repositories.ErrNotFound
	}
	return request, nil
}

func (s *memRequestStore) FindPending(_ context.Context, fromID, toID string) (models.FriendRequest, error) {
	for _, request := range s.requests {
		if request.FromID == fromID && request.ToID == toID {
			return request, nil
		}
	}
	return models.FriendRequest{}, repositories.ErrNotFound
}

func (s *memRequestStore) ListSent(_ context.Context, fromID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.FromID == fromID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *memRequestStore) ListReceived(_ context.Context, toID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for _, request := range s.requests {
		if request.ToID == toID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *memRequestStore) Delete(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.requests[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

type memGraph struct {
	edges   map[string]map[string]struct{}
	failOn  string
	addErrs int
}

func newMemGraph() *memGraph {
	return &memGraph{edges: make(map[string]map[string]struct{})}
}

func (g *memGraph) AddFriend(_ context.Context, userID, friendID string) error {
	if g.failOn != "" && userID == g.failOn {
		g.addErrs++
		return errors.New("edge write failed")
	}
	if g.edges[userID] == nil {
		g.edges[userID] = make(map[string]struct{})
	}
	g.edges[userID][friendID] = struct{}{}
	return nil
}

func (g *memGraph) Friends(_ context.Context, userID string) ([]string, error) {
	var out []string
	for id := range g.edges[userID] {
		out = append(out, id)
	}
	return out, nil
}

func (g *memGraph) has(userID, friendID string) bool {
	_, ok := g.edges[userID][friendID]
	return ok
}

type memUsers struct {
	users map[string]models.User
}

func newMemUsers(ids ...string) *memUsers {
	users := make(map[string]models.User, len(ids))
	for _, id := range ids {
		users[id] = models.User{ID: id, Username: "user-" + id, Email: id + "@example.com", Password: "hash"}
	}
	return &memUsers{users: users}
}

func (u *memUsers) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := u.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func newTestEngine(requests *memRequestStore, graph *memGraph, users *memUsers) *Engine {
	engine := NewEngine(requests, graph, users, nil, 0)
	engine.NowFunc = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	seq := 0
	engine.IDFunc = func() string {
		seq++
		return fmt.Sprintf("req-%d", seq)
	}
	return engine
}

func TestEngineSend(t *testing.T) {
	requests := newMemRequestStore()
	engine := newTestEngine(requests, newMemGraph(), newMemUsers("a", "b"))

	request, err := engine.Send(context.Background(), "a", "b", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if request.From.ID != "a" || request.To.ID != "b" {
		t.Fatalf("unexpected endpoints: %+v", request)
	}
	if request.Message != "hi" {
		t.Fatalf("expected message to round-trip, got %q", request.Message)
	}
	if _, ok := requests.requests[request.ID]; !ok {
		t.Fatal("expected request to be persisted")
	}
}

func TestEngineSendValidation(t *testing.T) {
	engine := newTestEngine(newMemRequestStore(), newMemGraph(), newMemUsers("a", "b"))

	cases := []struct {
		name    string
		from    string
		to      string
		message string
		wantErr error
	}{
		{"emptyMessage", "a", "b", "   ", ErrEmptyMessage},
		{"selfRequest", "a", "a", "hi", ErrSelfRequest},
		{"unknownRecipient", "a", "ghost", "hi", ErrUserNotFound},
		{"unknownSender", "ghost", "b", "hi", ErrUserNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.Send(context.Background(), tc.from, tc.to, tc.message); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v got %v", tc.wantErr, err)
			}
		})
	}
}

func TestEngineSendDuplicateIsDirectionSensitive(t *testing.T) {
	engine := newTestEngine(newMemRequestStore(), newMemGraph(), newMemUsers("a", "b"))

	if _, err := engine.Send(context.Background(), "a", "b", "hi"); err != nil {
		t.Fatalf("first send: %v", err)
	}

	if _, err := engine.Send(context.Background(), "a", "b", "hi again"); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected duplicate error got %v", err)
	}

	// A reverse request is a distinct ordered pair and must succeed.
	if _, err := engine.Send(context.Background(), "b", "a", "hello back"); err != nil {
		t.Fatalf("reverse send: %v", err)
	}
}

func TestEngineAccept(t *testing.T) {
	requests := newMemRequestStore()
	graph := newMemGraph()
	engine := newTestEngine(requests, graph, newMemUsers("a", "b"))

	request, err := engine.Send(context.Background(), "a", "b", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	profile, err := engine.Accept(context.Background(), "b", request.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	if !graph.has("a", "b") || !graph.has("b", "a") {
		t.Fatal("expected both edge directions to exist")
	}
	if _, ok := requests.requests[request.ID]; ok {
		t.Fatal("expected accepted request to be deleted")
	}
	if len(profile.Friends) != 1 || profile.Friends[0].ID != "a" {
		t.Fatalf("expected acceptor's friends to contain a, got %+v", profile.Friends)
	}
}

func TestEngineAcceptMissingRequest(t *testing.T) {
	engine := newTestEngine(newMemRequestStore(), newMemGraph(), newMemUsers("a", "b"))

	if _, err := engine.Accept(context.Background(), "b", "missing"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected request not found got %v", err)
	}
}

func TestEngineAcceptIsIdempotentOnEdges(t *testing.T) {
	requests := newMemRequestStore()
	graph := newMemGraph()
	engine := newTestEngine(requests, graph, newMemUsers("a", "b"))

	first, err := engine.Send(context.Background(), "a", "b", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := engine.Accept(context.Background(), "b", first.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// A second request between already-friends users can still be accepted;
	// set-add keeps the graph free of duplicate edges.
	second, err := engine.Send(context.Background(), "a", "b", "hi again")
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	profile, err := engine.Accept(context.Background(), "b", second.ID)
	if err != nil {
		t.Fatalf("second accept: %v", err)
	}
	if len(profile.Friends) != 1 {
		t.Fatalf("expected exactly one friend, got %d", len(profile.Friends))
	}
}

func TestEngineAcceptKeepsRequestWhenEdgeWriteFails(t *testing.T) {
	requests := newMemRequestStore()
	graph := newMemGraph()
	graph.failOn = "b"
	engine := newTestEngine(requests, graph, newMemUsers("a", "b"))

	request, err := engine.Send(context.Background(), "a", "b", "hi")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := engine.Accept(context.Background(), "b", request.ID); err == nil {
		t.Fatal("expected accept to fail")
	}

	// The request must survive a failed edge write so the accept can be retried.
	if _, ok := requests.requests[request.ID]; !ok {
		t.Fatal("expected request to remain after failed edge write")
	}

	graph.failOn = ""
	if _, err := engine.Accept(context.Background(), "b", request.ID); err != nil {
		t.Fatalf("retried accept: %v", err)
	}
	if !graph.has("a", "b") || !graph.has("b", "a") {
		t.Fatal("expected both edges after retry")
	}
}

func TestEngineSentAndReceived(t *testing.T) {
	engine := newTestEngine(newMemRequestStore(), newMemGraph(), newMemUsers("a", "b", "c"))

	if _, err := engine.Send(context.Background(), "a", "b", "hi b"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := engine.Send(context.Background(), "a", "c", "hi c"); err != nil {
		t.Fatalf("send: %v", err)
	}

	sent, err := engine.Sent(context.Background(), "a")
	if err != nil {
		t.Fatalf("sent: %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("expected 2 sent requests got %d", len(sent))
	}

	received, err := engine.Received(context.Background(), "b")
	if err != nil {
		t.Fatalf("received: %v", err)
	}
	if len(received) != 1 || received[0].From.ID != "a" {
		t.Fatalf("unexpected received requests: %+v", received)
	}

	// No requests addressed to a: empty, not an error.
	none, err := engine.Received(context.Background(), "a")
	if err != nil {
		t.Fatalf("received: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty result got %+v", none)
	}
}
