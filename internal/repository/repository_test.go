package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"gorm.io/gorm"

	"team-tracker/internal/calendar"
	"team-tracker/internal/dates"
	"team-tracker/internal/model"
)

var _ calendar.Store = (*Store)(nil)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func dated(id, member string, status model.Status, start, end string) *model.Task {
	s, e := dates.MustParse(start), dates.MustParse(end)
	return &model.Task{ID: id, Title: id, MemberID: member, Status: status, StartDate: &s, EndDate: &e}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestTaskRepository_RoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	task := dated("a", "m1", model.StatusPending, "2025-01-05", "2025-01-10")
	task.Amount = 120_000
	task.Points = 12
	is.NoErr(repo.Create(ctx, task))

	got, err := repo.FindByID(ctx, "a")
	is.NoErr(err)
	is.Equal(*got.StartDate, dates.MustParse("2025-01-05"))
	is.Equal(*got.EndDate, dates.MustParse("2025-01-10"))
	is.True(got.ScheduledDate == nil)
	is.Equal(got.Amount, int64(120_000))
	is.Equal(got.Status, model.StatusPending)

	_, err = repo.FindByID(ctx, "missing")
	is.True(errors.Is(err, ErrNotFound))
}

func TestTaskRepository_ListWindow(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))

	legacyDay := dates.MustParse("2025-01-20")
	for _, task := range []*model.Task{
		dated("inside", "m1", model.StatusPending, "2025-01-05", "2025-01-10"),
		dated("carry", "m1", model.StatusCompleted, "2024-12-28", "2025-01-02"),
		dated("edge", "m2", model.StatusPending, "2025-01-31", "2025-02-03"),
		dated("before", "m1", model.StatusPending, "2024-12-01", "2024-12-31"),
		dated("after", "m1", model.StatusPending, "2025-02-01", "2025-02-02"),
		dated("gone", "m1", model.StatusDeleted, "2025-01-05", "2025-01-06"),
		{ID: "legacy", MemberID: "m2", Status: model.StatusPending, ScheduledDate: &legacyDay},
	} {
		is.NoErr(repo.Create(ctx, task))
	}
	january := dates.Month(2025, time.January)

	tasks, err := repo.List(ctx, TaskFilter{Window: &january})
	is.NoErr(err)
	is.Equal(ids(tasks), []string{"carry", "inside", "legacy", "edge"})

	t.Run("member", func(t *testing.T) {
		is := is.New(t)
		tasks, err := repo.List(ctx, TaskFilter{Window: &january, MemberID: "m2"})
		is.NoErr(err)
		is.Equal(ids(tasks), []string{"legacy", "edge"})
	})

	t.Run("statuses", func(t *testing.T) {
		is := is.New(t)
		tasks, err := repo.List(ctx, TaskFilter{Statuses: []model.Status{model.StatusCompleted, model.StatusDeleted}})
		is.NoErr(err)
		is.Equal(ids(tasks), []string{"carry", "gone"})
	})

	t.Run("no filter hides deleted", func(t *testing.T) {
		is := is.New(t)
		tasks, err := repo.List(ctx, TaskFilter{})
		is.NoErr(err)
		is.Equal(len(tasks), 6)
		for _, task := range tasks {
			is.True(task.Status != model.StatusDeleted)
		}
	})
}

func TestTaskRepository_UpdateStatus(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := NewTaskRepository(newTestDB(t))
	is.NoErr(repo.Create(ctx, dated("a", "m1", model.StatusPending, "2025-01-05", "2025-01-10")))

	at := time.Date(2025, time.January, 10, 18, 30, 0, 0, time.UTC)
	got, err := repo.UpdateStatus(ctx, "a", model.StatusCompleted, &at)
	is.NoErr(err)
	is.Equal(got.Status, model.StatusCompleted)
	is.True(got.CompletedAt != nil)
	is.True(got.CompletedAt.Equal(at))

	got, err = repo.UpdateStatus(ctx, "a", model.StatusPending, nil)
	is.NoErr(err)
	is.Equal(got.Status, model.StatusPending)
	is.True(got.CompletedAt == nil)

	_, err = repo.UpdateStatus(ctx, "missing", model.StatusCompleted, &at)
	is.True(errors.Is(err, ErrNotFound))
}

func TestMemberRepository(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := NewMemberRepository(newTestDB(t))

	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	is.NoErr(repo.Create(ctx, &model.Member{Name: "Sora", Color: "#BAFFC9", CreatedAt: base.Add(time.Hour)}))
	is.NoErr(repo.Create(ctx, &model.Member{ID: "aki", Name: "Aki", Color: "#FFB3BA", CreatedAt: base}))

	members, err := repo.List(ctx)
	is.NoErr(err)
	is.Equal(len(members), 2)
	is.Equal(members[0].Name, "Aki")
	is.Equal(members[1].Name, "Sora")
	is.True(members[1].ID != "") // generated

	again, err := repo.GetOrCreate(ctx, "Aki", "#000000")
	is.NoErr(err)
	is.Equal(again.ID, "aki")
	is.Equal(again.Color, "#FFB3BA")

	fresh, err := repo.GetOrCreate(ctx, "Ren", "#BAE1FF")
	is.NoErr(err)
	is.Equal(fresh.Color, "#BAE1FF")

	n, err := repo.Count(ctx)
	is.NoErr(err)
	is.Equal(n, int64(3))

	_, err = repo.FindByID(ctx, "nobody")
	is.True(errors.Is(err, ErrNotFound))
}

func TestGoalRepository(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := NewGoalRepository(newTestDB(t))

	goal, err := repo.ForMonth(ctx, "2025-01")
	is.NoErr(err)
	is.True(goal == nil)

	is.NoErr(repo.Upsert(ctx, &model.Goal{Month: "2025-01", TargetAmount: 5_000_000, TargetPoints: 500}))
	is.NoErr(repo.Upsert(ctx, &model.Goal{Month: "2025-02", TargetAmount: 6_000_000, TargetPoints: 600}))
	is.NoErr(repo.Upsert(ctx, &model.Goal{Month: "2025-01", TargetAmount: 7_000_000, TargetPoints: 700}))

	goal, err = repo.ForMonth(ctx, "2025-01")
	is.NoErr(err)
	is.Equal(goal.TargetAmount, int64(7_000_000))
	is.Equal(goal.TargetPoints, int64(700))

	goals, err := repo.List(ctx)
	is.NoErr(err)
	is.Equal(len(goals), 2)
	is.Equal(goals[0].Month, "2025-02")
}

func TestSubscriberRepository(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := NewSubscriberRepository(newTestDB(t))

	first, err := repo.UpsertFromTelegram(ctx, 42, "Aki", "", "aki")
	is.NoErr(err)
	second, err := repo.UpsertFromTelegram(ctx, 42, "Aki", "Tanaka", "aki_t")
	is.NoErr(err)
	is.Equal(first.ID, second.ID)

	_, err = repo.UpsertFromTelegram(ctx, 7, "Ren", "", "")
	is.NoErr(err)

	subs, err := repo.ListAll(ctx)
	is.NoErr(err)
	is.Equal(len(subs), 2)

	is.NoErr(repo.Remove(ctx, 42))
	is.NoErr(repo.Remove(ctx, 42))
	subs, err = repo.ListAll(ctx)
	is.NoErr(err)
	is.Equal(len(subs), 1)
	is.Equal(subs[0].TelegramID, int64(7))
}

func TestStore_BacksBoard(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	db := newTestDB(t)
	store := NewStore(NewTaskRepository(db), NewMemberRepository(db))

	is.NoErr(store.Members.Create(ctx, &model.Member{ID: "m1", Name: "Aki", Color: "#FFB3BA"}))
	is.NoErr(store.Tasks.Create(ctx, dated("a", "m1", model.StatusPending, "2025-01-05", "2025-01-10")))
	is.NoErr(store.Tasks.Create(ctx, dated("b", "m1", model.StatusPending, "2025-03-05", "2025-03-10")))

	clock := dates.FixedClock(time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC))
	board := calendar.NewBoard(store, dates.Month(2025, time.January), calendar.Options{Clock: clock})
	is.NoErr(board.Load(ctx))
	is.Equal(len(board.Pending()), 1)

	done, err := board.Complete(ctx, "a", dates.MustParse("2025-01-10"))
	is.NoErr(err)
	is.Equal(done.Status, model.StatusCompleted)
	is.Equal(len(board.Pending()), 0)

	stored, err := store.Tasks.FindByID(ctx, "a")
	is.NoErr(err)
	is.Equal(stored.Status, model.StatusCompleted)
	is.True(stored.CompletedAt.Equal(clock.Now()))
}
