// Package httpapi exposes ProdHub services over HTTP/JSON for the web
// client, plus a websocket stream of live notifications.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/dmitrijs2005/prodhub/internal/logging"
	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/server/notify"
	"github.com/dmitrijs2005/prodhub/internal/server/services"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RepositoryService interface {
	ListPublic(ctx context.Context, limit int) ([]*models.Repository, error)
	ListByOwner(ctx context.Context, viewerID, ownerID string) ([]*models.Repository, error)
	Get(ctx context.Context, viewerID, id string) (*models.Repository, error)
	Create(ctx context.Context, ownerID string, in services.CreateRepositoryInput) (*models.Repository, error)
	ListBranches(ctx context.Context, viewerID, repoID string) ([]*models.Branch, error)
	CreateBranch(ctx context.Context, userID, repoID, name string) (*models.Branch, error)
}

type CommitService interface {
	ListCommits(ctx context.Context, viewerID, repoID, branchID string) ([]*models.Commit, error)
	GetCommit(ctx context.Context, viewerID, repoID, commitID string) (*models.Commit, error)
	CreateCommit(ctx context.Context, userID, repoID, branchID string, in services.CreateCommitInput, onProgress transfer.PercentFunc) (*models.Commit, error)
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	CreateProfile(ctx context.Context, userID string, in services.ProfileInput) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in services.ProfileInput) (*models.User, error)
}

type StarService interface {
	Star(ctx context.Context, userID, repoID string) (*models.Repository, error)
	Unstar(ctx context.Context, userID, repoID string) (*models.Repository, error)
	Starred(ctx context.Context, userID, repoID string) (bool, error)
}

type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	Subscribe(ctx context.Context, userID string) (*notify.Subscription, error)
}

// Services groups the business logic the handlers call into.
type Services struct {
	Repositories  RepositoryService
	Commits       CommitService
	Users         UserService
	Stars         StarService
	Notifications NotificationService
}

// Handler serves the ProdHub HTTP API.
type Handler struct {
	svc         Services
	jwtSecret   []byte
	maxFileSize int64
	log         logging.Logger
}

func NewHandler(svc Services, secretKey string, maxFileSize int64, log logging.Logger) *Handler {
	if maxFileSize <= 0 {
		maxFileSize = common.MaxFileSize
	}
	return &Handler{
		svc:         svc,
		jwtSecret:   []byte(secretKey),
		maxFileSize: maxFileSize,
		log:         log.With("module", "http_api"),
	}
}

// Routes builds the chi router with every API route mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Reads are public; a valid token additionally reveals private data.
		r.Group(func(r chi.Router) {
			r.Use(h.optionalAuth)
			r.Get("/repositories", h.listPublicRepositories)
			r.Get("/repositories/{repoID}", h.getRepository)
			r.Get("/repositories/{repoID}/branches", h.listBranches)
			r.Get("/repositories/{repoID}/branches/{branchID}/commits", h.listCommits)
			r.Get("/repositories/{repoID}/commits/{commitID}", h.getCommit)
			r.Get("/users/{userID}/repositories", h.listUserRepositories)
			r.Get("/users/me", h.getProfile)
			r.Get("/users/{userID}", h.getProfile)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth(false))
			r.Post("/repositories", h.createRepository)
			r.Post("/repositories/{repoID}/branches", h.createBranch)
			r.Post("/repositories/{repoID}/branches/{branchID}/commits", h.createCommit)
			r.Get("/repositories/{repoID}/star", h.starred)
			r.Put("/repositories/{repoID}/star", h.star)
			r.Delete("/repositories/{repoID}/star", h.unstar)
			r.Post("/users/me", h.createProfile)
			r.Put("/users/me", h.updateProfile)
			r.Get("/notifications", h.listNotifications)
			r.Post("/notifications/{id}/read", h.markNotificationRead)
		})

		// Browsers cannot set headers on a websocket handshake.
		r.With(h.requireAuth(true)).Get("/notifications/stream", h.streamNotifications)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.log.Info(r.Context(), "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
