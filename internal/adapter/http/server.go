package adapthttp

import (
	"net/http"

	"go.uber.org/zap"

	"wellmatch/internal/devapi"
	"wellmatch/internal/domain"
)

// Options tune the development backend.
type Options struct {
	// RequireApproval registers professionals inactive until an admin
	// activates them.
	RequireApproval bool
	// LoginPerMinute caps login and register attempts per client IP.
	LoginPerMinute int
	// MaxUploadBytes caps profile image uploads.
	MaxUploadBytes int64
}

// Server is the driving HTTP adapter that serves the marketplace REST
// contract from the development backend's services.
type Server struct {
	auth    *devapi.AuthService
	store   devapi.Store
	uploads devapi.UploadRepository
	log     *zap.Logger
	opts    Options
	limiter *ipLimiter
}

// New creates a Server wired to the given services.
func New(auth *devapi.AuthService, store devapi.Store, uploads devapi.UploadRepository, log *zap.Logger, opts Options) *Server {
	if opts.LoginPerMinute <= 0 {
		opts.LoginPerMinute = 20
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &Server{
		auth:    auth,
		store:   store,
		uploads: uploads,
		log:     log.Named("devapi"),
		opts:    opts,
		limiter: newIPLimiter(opts.LoginPerMinute),
	}
}

// Handler returns the root http.Handler for the backend.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.Handle("POST /api/login", s.rateLimit(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/register", s.rateLimit(http.HandlerFunc(s.handleRegister)))
	mux.HandleFunc("POST /api/logout", s.handleLogout)

	authed := func(h http.HandlerFunc) http.Handler { return s.authMiddleware(h) }
	pro := func(h http.HandlerFunc) http.Handler {
		return s.authMiddleware(requireRole(domain.RoleProfessional, h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return s.authMiddleware(requireRole(domain.RoleAdmin, h))
	}

	const me = "/api/professionals/me"
	mux.Handle("GET "+me, authed(s.handleMe))
	mux.Handle("PUT "+me, pro(s.handleUpdateMe))
	mux.Handle("GET /api/professionals/options", authed(s.handleOptions))
	mux.Handle("PUT "+me+"/availability", pro(s.handleAvailability))
	mux.Handle("POST "+me+"/upload-image", pro(s.handleUploadImage))
	mux.Handle("GET "+me+"/pending-reviews", pro(s.handlePendingReviews))
	mux.Handle("PUT "+me+"/reviews/{id}", pro(s.handleActOnReview))
	mux.Handle("GET "+me+"/questionnaires", pro(s.handleQuestionnaires))
	mux.Handle("PUT "+me+"/questionnaires/{id}/status", pro(s.handleActOnQuestionnaire))
	mux.Handle("POST "+me+"/log-contact", pro(s.handleLogContact))
	mux.HandleFunc("GET /uploads/{name}", s.handleUpload)

	const adm = "/api/admin"
	mux.Handle("GET "+adm+"/stats", admin(s.handleStats))
	mux.Handle("GET "+adm+"/stats/registrations-chart", admin(s.handleRegistrationsChart))
	mux.Handle("GET "+adm+"/reviews/pending-admin", admin(s.handlePendingAdmin))
	mux.Handle("PUT "+adm+"/reviews/{id}/status", admin(s.handleModerateReview))
	mux.Handle("GET "+adm+"/reviews/disputed", admin(s.handleDisputedReviews))
	mux.Handle("PUT "+adm+"/reviews/{id}/resolve-dispute", admin(s.handleResolveReview))
	mux.Handle("GET "+adm+"/questionnaires/disputed", admin(s.handleDisputedQuestionnaires))
	mux.Handle("PUT "+adm+"/questionnaires/{id}/resolve-dispute", admin(s.handleResolveQuestionnaire))
	mux.Handle("GET "+adm+"/users/professionals", admin(s.handleProfessionals))
	mux.Handle("PUT "+adm+"/professionals/{id}/status", admin(s.handleProfessionalStatus))
	mux.Handle("PUT "+adm+"/professionals/{id}/verify", admin(s.handleVerify))
	mux.Handle("GET "+adm+"/users/all", admin(s.handleUsers))
	mux.Handle("GET "+adm+"/settings", admin(s.handleSettings))
	mux.Handle("PUT "+adm+"/settings", admin(s.handleSaveSettings))
	mux.Handle("GET "+adm+"/questionnaires", admin(s.handleTemplates))
	mux.Handle("POST "+adm+"/questionnaires", admin(s.handleCreateTemplate))
	mux.Handle("PUT "+adm+"/questionnaires/{id}", admin(s.handleUpdateTemplate))
	mux.Handle("GET "+adm+"/questionnaires/sent", admin(s.handleSent))
	mux.Handle("POST "+adm+"/questionnaires/send", admin(s.handleSend))

	return s.loggingMiddleware(withNoCache(mux))
}
