// Package api exposes the calendar, summaries and task actions over HTTP.
package api

import (
	"log"
	"net/http"
	"os"

	"github.com/felixge/httpsnoop"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"team-tracker/internal/calendar"
	"team-tracker/internal/dates"
	"team-tracker/internal/service"
)

type Server struct {
	tasks   *service.TaskService
	reports *service.ReportService
	store   calendar.Store
	clock   dates.Clock
	logger  *log.Logger
}

func NewServer(tasks *service.TaskService, reports *service.ReportService, store calendar.Store, clock dates.Clock) *Server {
	return &Server{
		tasks:   tasks,
		reports: reports,
		store:   store,
		clock:   clock,
		logger:  log.New(os.Stdout, "[http] ", log.LstdFlags),
	}
}

// Routes builds the router with request logging and CORS for origins.
func (s *Server) Routes(origins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/calendar", s.handleCalendar).Methods(http.MethodGet)
	r.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/members", s.handleMembers).Methods(http.MethodGet)
	r.HandleFunc("/goals", s.handleGoals).Methods(http.MethodGet)
	r.HandleFunc("/goals/{month}", s.handleSetGoal).Methods(http.MethodPut)

	r.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/pending", s.handlePending).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", s.handleGetTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", s.handleDeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}/status", s.handleSetStatus).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}/complete", s.handleComplete).Methods(http.MethodPost)

	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"})
	methods := gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions})
	return gorillahandlers.CORS(headers, methods, gorillahandlers.AllowedOrigins(origins))(r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Printf("%s %s %d %v", r.Method, r.URL.Path, m.Code, m.Duration)
	})
}
