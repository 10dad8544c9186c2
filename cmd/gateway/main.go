package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/coursebridge/coursebridge/internal/api/http"
	"github.com/coursebridge/coursebridge/internal/auth"
	"github.com/coursebridge/coursebridge/internal/config"
	"github.com/coursebridge/coursebridge/internal/middleware"
	"github.com/coursebridge/coursebridge/internal/session"
	"github.com/coursebridge/coursebridge/internal/trainercentral"
)

func main() {
	cfg := config.FromEnv()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	store := session.NewStore()
	cookies := auth.NewCookieService(cfg.SessionSecret)
	provider := auth.NewProvider(cfg)
	gateway := trainercentral.NewClient(cfg.UpstreamTimeout, log)

	authH := auth.NewHandler(cfg, provider, store, cookies, log)
	deps := api.Deps{
		Gateway:  gateway,
		Sessions: store,
		Cookies:  cookies,
		Cfg:      cfg,
		Log:      log,
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPM).Handler())

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	// OAuth flow + discovery
	r.Get("/auth/login", authH.Login)
	r.Get("/auth/callback", authH.Callback)
	r.Post("/auth/token", authH.Token)
	r.Post("/auth/logout", authH.Logout)
	if cfg.EnableDebugEndpoints {
		r.Get("/auth/session_tokens", authH.SessionTokens)
	}
	r.Route("/.well-known", func(wr chi.Router) {
		wr.Get("/oauth-protected-resource", auth.ProtectedResourceHandler(cfg))
		wr.Get("/oauth-authorization-server", auth.AuthorizationServerHandler(cfg))
		wr.Get("/openid-configuration", auth.AuthorizationServerHandler(cfg))
	})

	// Courses
	r.Route("/courses", func(cr chi.Router) {
		cr.Post("/", api.CreateCourseHandler(deps))
		cr.Get("/", api.ListCoursesHandler(deps))
		cr.Get("/{courseID}", api.GetCourseHandler(deps))
		cr.Put("/{courseID}", api.UpdateCourseHandler(deps))
		cr.Delete("/{courseID}", api.DeleteCourseHandler(deps))
	})

	// Chapters (sections)
	r.Route("/chapters", func(cr chi.Router) {
		cr.Post("/", api.CreateChapterHandler(deps))
		cr.Put("/{courseID}/sections/{sectionID}", api.UpdateChapterHandler(deps))
		cr.Delete("/{courseID}/sections/{sectionID}", api.DeleteChapterHandler(deps))
	})

	// Lessons
	r.Route("/lessons", func(lr chi.Router) {
		lr.Post("/create", api.CreateLessonHandler(deps))
		lr.Put("/{sessionID}", api.UpdateLessonHandler(deps))
		lr.Delete("/{sessionID}", api.DeleteLessonHandler(deps))
	})

	// Assignments
	r.Route("/assignments", func(ar chi.Router) {
		ar.Post("/create", api.CreateAssignmentHandler(deps))
		ar.Delete("/{sessionID}", api.DeleteAssignmentHandler(deps))
	})

	// Tests
	r.Route("/tests", func(tr chi.Router) {
		tr.Post("/create_full", api.CreateFullTestHandler(deps))
		tr.Post("/create_form", api.CreateTestFormHandler(deps))
		tr.Post("/add_questions", api.AddTestQuestionsHandler(deps))
		tr.Get("/course/{courseID}/sessions", api.ListCourseSessionsHandler(deps))
	})

	// Course live workshops
	r.Route("/course", func(cr chi.Router) {
		cr.Post("/{courseID}/live_sessions", api.CreateCourseLiveSessionHandler(deps))
		cr.Get("/{courseID}/live_sessions", api.ListCourseLiveSessionsHandler(deps))
		cr.Delete("/live_sessions/{sessionID}", api.DeleteCourseLiveSessionHandler(deps))
		cr.Post("/invite_learner", api.InviteLearnerHandler(deps))
	})

	// Global workshops
	r.Route("/global_workshops", func(gr chi.Router) {
		gr.Post("/create", api.CreateGlobalWorkshopHandler(deps))
		gr.Get("/", api.ListGlobalWorkshopsHandler(deps))
		gr.Put("/{sessionID}", api.UpdateGlobalWorkshopHandler(deps))
		gr.Post("/occurrence", api.CreateOccurrenceHandler(deps))
		gr.Put("/occurrence/{talkID}", api.UpdateOccurrenceHandler(deps))
		gr.Post("/{sessionID}/invite", api.InviteWorkshopUserHandler(deps))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
