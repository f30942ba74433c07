package handler

import (
	"net/http"
	"time"

	"devconnector-server/internal/config"
	"devconnector-server/internal/middleware"
	"devconnector-server/internal/ratelimit"
	"devconnector-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Users     *UserHandler
	Auth      *AuthHandler
	Posts     *PostHandler
	WebSocket *WebSocketHandler
	Verifier  middleware.TokenVerifier
	Limiter   ratelimit.Limiter
	RateLimit config.RateLimitConfig
	CORS      config.CORSConfig
	Logger    zerolog.Logger
}

func NewRouter(deps RouterDeps) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware(deps.Logger))
	r.Use(middleware.CORSMiddleware(deps.CORS))

	api := r.PathPrefix("/api").Subrouter()

	public := api.PathPrefix("").Subrouter()
	if deps.RateLimit.Enabled && deps.Limiter != nil {
		public.Use(middleware.RateLimitMiddleware(deps.Limiter, deps.RateLimit.RequestsPerMinute, time.Minute, deps.RateLimit.TrustProxy))
	}
	public.HandleFunc("/users", deps.Users.Register).Methods("POST", "OPTIONS")
	public.HandleFunc("/auth", deps.Auth.Login).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(deps.Verifier))

	protected.HandleFunc("/auth", deps.Auth.Me).Methods("GET", "OPTIONS")

	protected.HandleFunc("/posts/like/{id}", deps.Posts.Like).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/posts/unlike/{id}", deps.Posts.Unlike).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/posts/comment/{id}", deps.Posts.Comment).Methods("POST", "OPTIONS")
	protected.HandleFunc("/posts/comment/{id}/{comment_id}", deps.Posts.DeleteComment).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/posts", deps.Posts.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/posts", deps.Posts.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/{id}", deps.Posts.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/{id}", deps.Posts.Delete).Methods("DELETE", "OPTIONS")

	if deps.WebSocket != nil {
		r.HandleFunc("/ws", deps.WebSocket.HandleConnection)
	}

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "healthy"})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("API Running"))
}
