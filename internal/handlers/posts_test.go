package handlers

import (
	"net/http"
	"testing"

	"github.com/mingleapp/backend/internal/content"
)

func TestPostHandlerCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice", "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/posts", aliceToken, createPostRequest{Content: "hello world"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: expected %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	post := decodeBody[map[string]content.Post](t, rec)["post"]
	if post.Author.Username != "alice" || post.Content != "hello world" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if post.Likes != 0 || post.Dislikes != 0 {
		t.Fatalf("expected zeroed counters: %+v", post)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list posts: expected %d got %d", http.StatusOK, rec.Code)
	}
	list := decodeBody[struct {
		Items      []content.Post `json:"items"`
		HasResults bool           `json:"hasResults"`
	}](t, rec)
	if len(list.Items) != 1 || !list.HasResults {
		t.Fatalf("unexpected post list: %+v", list)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/posts", aliceToken, createPostRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty post: expected %d got %d", http.StatusBadRequest, rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/v1/posts", "", createPostRequest{Content: "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated post: expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestPostHandlerReact(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice", "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/posts", aliceToken, createPostRequest{Content: "react to me"})
	post := decodeBody[map[string]content.Post](t, rec)["post"]

	// Dislike before any likes changes nothing.
	rec = env.do(t, http.MethodPut, "/api/v1/posts/react", "", reactRequest{ID: post.ID, Reaction: "dislike"})
	if rec.Code != http.StatusOK {
		t.Fatalf("dislike: expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	reaction := decodeBody[postReactionResponse](t, rec)
	if reaction.Applied || reaction.Post.Likes != 0 || reaction.Post.Dislikes != 0 {
		t.Fatalf("expected a no-op dislike, got %+v", reaction)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/posts/react", "", reactRequest{ID: post.ID, Reaction: "like"})
	reaction = decodeBody[postReactionResponse](t, rec)
	if !reaction.Applied || reaction.Post.Likes != 1 {
		t.Fatalf("expected the like to land, got %+v", reaction)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/posts/react", "", reactRequest{ID: post.ID, Reaction: "dislike"})
	reaction = decodeBody[postReactionResponse](t, rec)
	if !reaction.Applied || reaction.Post.Likes != 1 || reaction.Post.Dislikes != 1 {
		t.Fatalf("expected the dislike to land, got %+v", reaction)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/posts/react", "", reactRequest{ID: post.ID, Reaction: "meh"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad reaction: expected %d got %d", http.StatusBadRequest, rec.Code)
	}
	rec = env.do(t, http.MethodPut, "/api/v1/posts/react", "", reactRequest{ID: "missing", Reaction: "like"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing post: expected %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestPostHandlerDelete(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice", "alice@example.com")
	_, bobToken := env.register(t, "bob", "bob@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/posts", aliceToken, createPostRequest{Content: "mine"})
	post := decodeBody[map[string]content.Post](t, rec)["post"]

	rec = env.do(t, http.MethodPost, "/api/v1/comments", bobToken, createCommentRequest{PostID: post.ID, Content: "nice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create comment: expected %d got %d", http.StatusCreated, rec.Code)
	}

	// Only the author may delete.
	rec = env.do(t, http.MethodDelete, "/api/v1/posts?id="+post.ID, bobToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: expected %d got %d", http.StatusForbidden, rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/posts?id="+post.ID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	deleted := decodeBody[map[string]content.Post](t, rec)["post"]
	if deleted.ID != post.ID {
		t.Fatalf("expected the deleted post back, got %+v", deleted)
	}

	// The post's comments went with it.
	if len(env.comments.comments) != 0 {
		t.Fatalf("expected comments to be swept, have %d", len(env.comments.comments))
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/posts?id="+post.ID, aliceToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: expected %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCommentHandlerReact(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice", "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/posts", aliceToken, createPostRequest{Content: "post"})
	post := decodeBody[map[string]content.Post](t, rec)["post"]
	rec = env.do(t, http.MethodPost, "/api/v1/comments", aliceToken, createCommentRequest{PostID: post.ID, Content: "comment"})
	comment := decodeBody[map[string]content.Comment](t, rec)["comment"]

	rec = env.do(t, http.MethodPut, "/api/v1/comments/react", "", reactRequest{ID: comment.ID, Reaction: "dislike"})
	reaction := decodeBody[commentReactionResponse](t, rec)
	if reaction.Applied || reaction.Comment.Dislikes != 0 {
		t.Fatalf("expected a no-op dislike, got %+v", reaction)
	}

	rec = env.do(t, http.MethodPut, "/api/v1/comments/react", "", reactRequest{ID: comment.ID, Reaction: "like"})
	reaction = decodeBody[commentReactionResponse](t, rec)
	if !reaction.Applied || reaction.Comment.Likes != 1 {
		t.Fatalf("expected the like to land, got %+v", reaction)
	}
}

func TestCommentHandlerCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.register(t, "alice", "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/v1/comments", aliceToken, createCommentRequest{PostID: "missing", Content: "hi"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("comment on missing post: expected %d got %d", http.StatusNotFound, rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/posts", aliceToken, createPostRequest{Content: "post"})
	post := decodeBody[map[string]content.Post](t, rec)["post"]

	rec = env.do(t, http.MethodPost, "/api/v1/comments", aliceToken, createCommentRequest{PostID: post.ID, Content: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank comment: expected %d got %d", http.StatusBadRequest, rec.Code)
	}
}
