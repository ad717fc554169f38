package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"team-tracker/internal/calendar"
	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
	"team-tracker/internal/service"
)

type calendarResponse struct {
	Grid    calendar.Grid `json:"grid"`
	Pending []model.Task  `json:"pending"`
}

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func (s *Server) monthParam(r *http.Request) (dates.Range, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return period.CurrentMonth(s.clock), nil
	}
	window, err := period.ParseMonth(raw)
	if err != nil {
		return dates.Range{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return window, nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	window, err := s.monthParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	board := calendar.NewBoard(s.store, window, calendar.Options{
		Clock:    s.clock,
		MemberID: r.URL.Query().Get("member"),
	})
	if err := board.Load(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calendarResponse{Grid: board.Grid(), Pending: board.Pending()})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, err := s.monthParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	report, err := s.reports.Month(r.Context(), window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	preset, err := period.ParsePreset(r.URL.Query().Get("range"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	analytics, err := s.reports.Analytics(r.Context(), preset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	task, err := s.tasks.Create(r.Context(), input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.Pending(r.Context(), r.URL.Query().Get("member"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	status, err := model.ParseStatus(body.Status)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	task, err := s.changeStatus(r, mux.Vars(r)["id"], status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) changeStatus(r *http.Request, id string, to model.Status) (*model.Task, error) {
	ctx := r.Context()
	switch to {
	case model.StatusCompleted:
		return s.tasks.Complete(ctx, id)
	case model.StatusPending:
		return s.tasks.Reopen(ctx, id)
	case model.StatusCancelled:
		return s.tasks.Cancel(ctx, id)
	case model.StatusDeleted:
		if err := s.tasks.Delete(ctx, id); err != nil {
			return nil, err
		}
		return s.tasks.Get(ctx, id)
	default:
		return s.tasks.SetStatus(ctx, id, to)
	}
}

// handleDeleteTask soft-deletes; the row stays readable with status deleted.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.reports.Goals(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if goals == nil {
		goals = []model.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleSetGoal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TargetAmount int64 `json:"target_amount"`
		TargetPoints int64 `json:"target_points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	goal, err := s.reports.SetGoal(r.Context(), mux.Vars(r)["month"], body.TargetAmount, body.TargetPoints)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// handleComplete completes a task from a calendar cell. The board for the
// month of ?on= decides whether that cell carries the completion control.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	on := dates.Today(s.clock)
	if raw := r.URL.Query().Get("on"); raw != "" {
		d, err := dates.Parse(raw)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		on = d
	}

	board := calendar.NewBoard(s.store, dates.Month(on.Year(), on.Month()), calendar.Options{Clock: s.clock})
	if err := board.Load(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	task, err := board.Complete(r.Context(), mux.Vars(r)["id"], on)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
