package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
	"team-tracker/internal/repository"
	"team-tracker/internal/summary"
)

// ErrInvalidGoal is returned for monthly targets that cannot be stored.
var ErrInvalidGoal = errors.New("invalid goal")

// Report is everything the monthly dashboard shows for one month.
type Report struct {
	Window   dates.Range      `json:"window"`
	Summary  summary.Summary  `json:"summary"`
	Targets  summary.Targets  `json:"targets"`
	Progress summary.Progress `json:"progress"`
	Recent   []model.Task     `json:"recent"`
	Overdue  []model.Task     `json:"overdue"`
	Members  []model.Member   `json:"members"`

	// Insight is only written for the month in progress.
	Insight string `json:"insight,omitempty"`
}

type Analytics struct {
	Range  period.Preset         `json:"range"`
	Trend  []summary.MonthBucket `json:"trend"`
	Shares []summary.Share       `json:"shares"`
	Stats  summary.MonthStats    `json:"stats"`
}

// ReportService builds the monthly summaries shown on the dashboard and sent
// to subscribers.
type ReportService struct {
	taskRepo   *repository.TaskRepository
	memberRepo *repository.MemberRepository
	goalRepo   *repository.GoalRepository
	clock      dates.Clock
}

func NewReportService(taskRepo *repository.TaskRepository, memberRepo *repository.MemberRepository, goalRepo *repository.GoalRepository, clock dates.Clock) *ReportService {
	return &ReportService{taskRepo: taskRepo, memberRepo: memberRepo, goalRepo: goalRepo, clock: clock}
}

// Month builds the report for window. Tasks are fetched unfiltered because
// completions inside the window may belong to tasks scheduled outside it.
func (s *ReportService) Month(ctx context.Context, window dates.Range) (*Report, error) {
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{})
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	goal, err := s.goalRepo.ForMonth(ctx, window.Start.MonthKey())
	if err != nil {
		return nil, err
	}

	loc := dates.Location(s.clock)
	r := &Report{
		Window:  window,
		Summary: summary.Summarize(tasks, window),
		Targets: summary.TargetsFor(goal),
		Recent:  summary.RecentActivity(tasks, window, loc, summary.DefaultRecentLimit),
		Overdue: overdue(tasks, window, dates.Today(s.clock)),
		Members: members,
	}
	r.Progress = summary.ProgressOf(r.Summary.Totals, r.Targets)
	if current := period.CurrentMonth(s.clock); window.Start.Equal(current.Start) && window.End.Equal(current.End) {
		r.Insight = summary.Insight(r.Summary, r.Targets, members, s.clock)
	}
	return r, nil
}

// CurrentMonth is Month for the month containing today.
func (s *ReportService) CurrentMonth(ctx context.Context) (*Report, error) {
	return s.Month(ctx, period.CurrentMonth(s.clock))
}

func (s *ReportService) Analytics(ctx context.Context, preset period.Preset) (*Analytics, error) {
	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{Statuses: []model.Status{model.StatusCompleted}})
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Analytics{
		Range:  preset,
		Trend:  summary.MonthlyTrend(tasks, goals, preset, s.clock),
		Shares: summary.MemberShare(members, tasks),
		Stats:  summary.StatsFor(tasks, s.clock),
	}, nil
}

// SetGoal stores the targets for a "YYYY-MM" month, replacing any earlier
// ones. A zero target falls back to the default in reports.
func (s *ReportService) SetGoal(ctx context.Context, month string, amount, points int64) (*model.Goal, error) {
	window, err := period.ParseMonth(strings.TrimSpace(month))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoal, err)
	}
	if amount < 0 || points < 0 {
		return nil, fmt.Errorf("%w: targets must not be negative", ErrInvalidGoal)
	}

	key := window.Start.MonthKey()
	if err := s.goalRepo.Upsert(ctx, &model.Goal{Month: key, TargetAmount: amount, TargetPoints: points}); err != nil {
		return nil, err
	}
	log.Printf("[info] goal set month=%s amount=%d points=%d", key, amount, points)
	return s.goalRepo.ForMonth(ctx, key)
}

func (s *ReportService) Goals(ctx context.Context) ([]model.Goal, error) {
	return s.goalRepo.List(ctx)
}

// overdue lists pending tasks in window that ended before today.
func overdue(tasks []model.Task, window dates.Range, today dates.Date) []model.Task {
	var out []model.Task
	for _, t := range period.FilterByWindow(tasks, window) {
		span, _ := t.Span()
		if t.Status == model.StatusPending && span.End.Before(today) {
			out = append(out, t)
		}
	}
	sortByEnd(out)
	return out
}

var printer = message.NewPrinter(language.Japanese)

// FormatAmount renders a yen amount with digit grouping.
func FormatAmount(n int64) string {
	return printer.Sprintf("¥%d", n)
}

// FormatReport renders a report as Telegram HTML.
func FormatReport(r *Report) string {
	names := make(map[string]string, len(r.Members))
	for _, m := range r.Members {
		names[m.ID] = m.Name
	}
	memberName := func(id string) string {
		if name, ok := names[id]; ok {
			return html.EscapeString(name)
		}
		return "unknown"
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📊 <b>Team report · %s</b>\n", r.Window.Start.MonthKey()))
	builder.WriteString(fmt.Sprintf("🗓 %s – %s\n\n", r.Window.Start.Long(), r.Window.End.Long()))

	s := r.Summary
	builder.WriteString("💰 <b>Revenue</b>\n")
	builder.WriteString(fmt.Sprintf("   %s of %s · <b>%d%%</b> (with pending %d%%)\n",
		FormatAmount(s.CompletedAmount), FormatAmount(r.Targets.Amount), r.Progress.Amount, r.Progress.AmountForecast))
	builder.WriteString(fmt.Sprintf("   pending %s\n", FormatAmount(s.PendingAmount)))
	builder.WriteString("⭐ <b>Points</b>\n")
	builder.WriteString(printer.Sprintf("   %d of %d · <b>%d%%</b> (with pending %d%%)\n",
		s.CompletedPoints, r.Targets.Points, r.Progress.Points, r.Progress.PointsForecast))

	builder.WriteString("\n👥 <b>Members</b>\n")
	if len(s.PerMember) == 0 {
		builder.WriteString("— no tasks this month\n")
	}
	for _, m := range s.PerMember {
		builder.WriteString(fmt.Sprintf("• %s: %s done, %s pending\n",
			memberName(m.MemberID), FormatAmount(m.CompletedAmount), FormatAmount(m.PendingAmount)))
	}

	builder.WriteString("\n✅ <b>Recently completed</b>\n")
	if len(r.Recent) == 0 {
		builder.WriteString("— nothing yet\n")
	}
	for _, t := range r.Recent {
		builder.WriteString(fmt.Sprintf("• %s <i>(%s)</i> %s\n",
			html.EscapeString(t.Title), memberName(t.MemberID), FormatAmount(t.Amount)))
	}

	if len(r.Overdue) > 0 {
		builder.WriteString("\n⚠️ <b>Overdue</b>\n")
		for _, t := range r.Overdue {
			span, _ := t.Span()
			builder.WriteString(fmt.Sprintf("• %s <i>(%s)</i> due %s\n",
				html.EscapeString(t.Title), memberName(t.MemberID), span.End))
		}
	}

	if r.Insight != "" {
		builder.WriteString("\n💬 ")
		builder.WriteString(html.EscapeString(r.Insight))
	}
	return strings.TrimSpace(builder.String())
}
