package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/auth"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/config"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/service"
)

// Pinger 用于健康检查，通常是 repository
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	validate   *validator.Validate
	translator ut.Translator
	config     *config.Config
	service    *service.Service
	tokens     *auth.Tokens
	metrics    *metrics.Metrics
	db         Pinger

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, svc *service.Service, tokens *auth.Tokens, m *metrics.Metrics, db Pinger) (*Handler, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		translator: trans,
		config:     cfg,
		service:    svc,
		tokens:     tokens,
		metrics:    m,
		db:         db,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           3600,
	}))
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(h.observe)
	h.Mux.Use(h.authenticate)

	h.Mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.errorResponse(w, r, http.StatusNotFound, "Resource not found")
	})
	h.Mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.errorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	// 认证相关，全部公开
	h.Mux.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/token", h.IssueToken)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	h.Mux.Route("/api/v1", func(r chi.Router) {
		// 职位的读接口公开，写接口需要登录
		r.Route("/job", func(r chi.Router) {
			r.Get("/", h.ListJobs)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetJob)
				r.Get("/detail", h.GetJobDetail)
				r.Get("/similar", h.GetSimilarJobs)
				r.With(h.requireAuth).Put("/", h.UpdateJob)
				r.With(h.requireAuth).Delete("/", h.DeleteJob)
			})
			r.With(h.requireAuth).Post("/", h.CreateJob)
		})

		// 以下 API 必须要在登录后才允许调用
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Route("/me", func(r chi.Router) {
				r.Use(h.myInfo)
				r.Get("/", h.GetMyInfo)
				r.Patch("/password", h.UpdateMyPassword)
			})

			r.Get("/matches/jobs/{id}", h.GetJobMatch)

			r.Route("/users", func(r chi.Router) {
				r.With(h.RequiredRole(domain.RoleAdmin)).Post("/", h.CreateUser)
				r.With(h.RequiredRole(domain.RoleAdmin)).Get("/", h.GetAllUsers)
				r.Get("/by-email/{email}", h.GetUserByEmail)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.userInfo)
					r.Get("/", h.GetUser)
					r.Put("/", h.UpdateUser)
					r.Delete("/", h.DeleteUser)
				})
			})

			r.Route("/resumes", func(r chi.Router) {
				r.With(h.resumeOwner).Post("/upload/{userId}", h.UploadResume)
				r.Route("/user/{userId}", func(r chi.Router) {
					r.Use(h.resumeOwner)
					r.Get("/", h.GetUserResumes)
					r.Get("/primary", h.GetPrimaryResume)
					r.Put("/primary/{resumeId}", h.SetPrimaryResume)
					r.Get("/download/{resumeId}", h.DownloadResume)
					r.Delete("/{resumeId}", h.DeleteResume)
				})
			})
		})
	})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			slog.Error("数据库健康检查失败", "error", err)
			h.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
