package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions}
	users := UserHandler{Users: deps.Users, Sessions: deps.Sessions, Relationships: deps.Relationships, Cascader: deps.Cascader}
	posts := PostHandler{Content: deps.Content, Sessions: deps.Sessions}
	comments := CommentHandler{Content: deps.Content, Sessions: deps.Sessions}
	friends := FriendHandler{Relationships: deps.Relationships, Sessions: deps.Sessions}
	stories := StoryHandler{Content: deps.Content, Sessions: deps.Sessions}
	media := MediaHandler{Store: deps.Media, Sessions: deps.Sessions}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/register", auth.Register)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("/api/v1/users", users.List)
	mux.HandleFunc("/api/v1/users/search", users.Search)
	mux.HandleFunc("/api/v1/users/profile", users.UpdateProfile)
	mux.HandleFunc("/api/v1/users/account", users.DeleteAccount)
	mux.HandleFunc("/api/v1/posts", posts.Handle)
	mux.HandleFunc("/api/v1/posts/by-user", posts.ListByUser)
	mux.HandleFunc("/api/v1/posts/react", posts.React)
	mux.HandleFunc("/api/v1/comments", comments.Handle)
	mux.HandleFunc("/api/v1/comments/react", comments.React)
	mux.HandleFunc("/api/v1/friends/requests", friends.SendRequest)
	mux.HandleFunc("/api/v1/friends/requests/sent", friends.ListSent)
	mux.HandleFunc("/api/v1/friends/requests/received", friends.ListReceived)
	mux.HandleFunc("/api/v1/friends/accept", friends.Accept)
	mux.HandleFunc("/api/v1/stories", stories.Handle)
	mux.HandleFunc("/api/v1/media", media.Upload)

	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Relationships RelationshipEngine
	Content       ContentService
	Cascader      AccountCascader
	Media         MediaStore
	Metrics       http.Handler
}
