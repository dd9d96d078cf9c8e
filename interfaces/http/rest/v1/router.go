package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"forum-api/interfaces/http/rest/handlers"
)

// Handlers groups the v1 endpoint handlers
type Handlers struct {
	Auth    *handlers.AuthHandler
	Users   *handlers.UserHandler
	Courses *handlers.CourseHandler
	Topics  *handlers.TopicHandler
	Comment *handlers.CommentHandler
}

// NewRouter creates the v1 API router. authLimit throttles the credential
// endpoints and may be nil.
func NewRouter(h Handlers, authLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(versionHeaders)

	r.Route("/auth", func(r chi.Router) {
		if authLimit != nil {
			r.Use(authLimit)
		}
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/password-reset", h.Auth.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.Auth.ResetPassword)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.Users.ListUsers)
		r.Get("/{userID}", h.Users.GetUser)
	})

	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.Courses.ListCourses)
		r.Get("/slug/{slug}", h.Courses.GetCourseBySlug)
		r.Get("/{courseID}", h.Courses.GetCourse)
		r.Get("/{courseID}/topics", h.Courses.ListTopics)
		r.Post("/{courseID}/topics", h.Topics.CreateTopic)
	})

	r.Route("/topics", func(r chi.Router) {
		r.Get("/", h.Topics.ListTopics)
		r.Get("/slug/{slug}", h.Topics.GetTopicBySlug)
		r.Get("/{topicID}", h.Topics.GetTopic)
		r.Patch("/{topicID}", h.Topics.UpdateTopic)
		r.Post("/{topicID}/views", h.Topics.IncrementViews)
		r.Get("/{topicID}/comments", h.Topics.ListComments)
		r.Post("/{topicID}/comments", h.Topics.CreateComment)
	})

	r.Route("/comments/{commentID}", func(r chi.Router) {
		r.Get("/", h.Comment.GetComment)
		r.Get("/replies", h.Comment.ListReplies)
		r.Post("/replies", h.Comment.CreateReply)
		r.Post("/likes", h.Comment.LikeComment)
		r.Delete("/likes", h.Comment.UnlikeComment)
	})

	r.Route("/replies/{replyID}", func(r chi.Router) {
		r.Get("/", h.Comment.GetReply)
		r.Post("/likes", h.Comment.LikeReply)
		r.Delete("/likes", h.Comment.UnlikeReply)
	})

	return r
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		next.ServeHTTP(w, r)
	})
}
