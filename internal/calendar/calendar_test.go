package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
)

var (
	january = dates.Month(2025, time.January)
	clock   = dates.FixedClock(time.Date(2025, time.January, 8, 10, 0, 0, 0, time.UTC))
	members = []model.Member{
		{ID: "m1", Name: "Alice", Color: "#FFB3BA"},
		{ID: "m2", Name: "Bob", Color: "#333333"},
	}
)

func task(id, member, start, end string) model.Task {
	s, e := dates.MustParse(start), dates.MustParse(end)
	return model.Task{ID: id, Title: "Task " + id, MemberID: member, Status: model.StatusPending, StartDate: &s, EndDate: &e}
}

func sampleTasks() []model.Task {
	return []model.Task{
		task("A", "m1", "2025-01-05", "2025-01-10"),
		task("B", "m1", "2025-01-08", "2025-01-12"),
		task("C", "m2", "2025-01-03", "2025-01-03"),
	}
}

func TestBuild_Geometry(t *testing.T) {
	is := is.New(t)
	g := Build(january, members, sampleTasks(), Options{Clock: clock, RowHeight: 10, LaneWidth: 20})

	is.Equal(len(g.Days), 31)
	is.Equal(len(g.Columns), 2)

	alice, ok := g.Column("m1")
	is.True(ok)
	is.Equal(alice.Lanes, 2)
	is.Equal(alice.Foreground, darkText)

	a, ok := g.Bar("A")
	is.True(ok)
	is.Equal(a.Lane, 0)
	is.Equal(a.Top, 40)
	is.Equal(a.Height, 60)
	is.Equal(a.Offset, 0)
	is.Equal(a.Width, 20)
	is.Equal(a.CompleteRow, 9)

	b, _ := g.Bar("B")
	is.Equal(b.Lane, 1)
	is.Equal(b.Top, 70)
	is.Equal(b.Height, 50)
	is.Equal(b.Offset, 20)

	bob, _ := g.Column("m2")
	is.Equal(bob.Lanes, 1)
	is.Equal(bob.Foreground, lightText)
}

func TestBuild_DayFlags(t *testing.T) {
	is := is.New(t)
	g := Build(january, members, nil, Options{Clock: clock})

	is.Equal(g.Days[0].Holiday, "New Year's Day")
	is.Equal(g.Days[0].Weekday, time.Wednesday)
	is.True(g.Days[3].Weekend) // Saturday the 4th
	is.True(!g.Days[6].Weekend)
	is.True(g.Days[7].Today)
	is.True(!g.Days[8].Today)
	is.Equal(g.Row(dates.New(2025, time.January, 8)), 7)
	is.Equal(g.Row(dates.New(2025, time.February, 1)), -1)

	alice, _ := g.Column("m1")
	is.Equal(alice.Lanes, 0)
	is.Equal(len(alice.Bars), 0)
}

func TestBuild_MemberFilter(t *testing.T) {
	is := is.New(t)
	g := Build(january, members, sampleTasks(), Options{Clock: clock, MemberID: "m2"})

	is.Equal(len(g.Columns), 1)
	is.Equal(g.Columns[0].Member.ID, "m2")
	_, ok := g.Bar("A")
	is.True(!ok)
}

func TestBuild_UnknownMemberDropped(t *testing.T) {
	is := is.New(t)
	tasks := append(sampleTasks(), task("X", "ghost", "2025-01-02", "2025-01-04"))
	g := Build(january, members, tasks, Options{Clock: clock})

	_, ok := g.Bar("X")
	is.True(!ok)
}

func TestBuild_ColumnWidthShrinksLanes(t *testing.T) {
	is := is.New(t)
	g := Build(january, members, sampleTasks(), Options{Clock: clock, LaneWidth: 20, ColumnWidth: 30})

	b, _ := g.Bar("B")
	is.Equal(b.Width, 15)
	is.Equal(b.Offset, 15)

	c, _ := g.Bar("C")
	is.Equal(c.Width, 20) // single lane fits
}

func TestBar_CompletableOnLastDayOnly(t *testing.T) {
	is := is.New(t)
	tasks := sampleTasks()
	done := task("D", "m2", "2025-01-20", "2025-01-21")
	done.Status = model.StatusCompleted
	tasks = append(tasks, done, task("E", "m2", "2025-01-30", "2025-02-02"))
	g := Build(january, members, tasks, Options{Clock: clock})

	a, _ := g.Bar("A")
	is.True(a.CompletableOn(dates.New(2025, time.January, 10)))
	is.True(!a.CompletableOn(dates.New(2025, time.January, 9)))
	is.True(!a.CompletableOn(dates.New(2025, time.January, 5)))

	d, _ := g.Bar("D")
	is.True(!d.CompletableOn(dates.New(2025, time.January, 21)))

	e, _ := g.Bar("E")
	is.True(e.ClippedEnd)
	is.Equal(e.CompleteRow, -1)
	is.True(!e.CompletableOn(dates.New(2025, time.February, 2)))
}

type fakeStore struct {
	members   []model.Member
	tasks     []model.Task
	updateErr error
	onUpdate  func()
	updates   int

	// silent makes UpdateTaskStatus accept the write without echoing it.
	silent bool
}

func (s *fakeStore) ListTasks(ctx context.Context, window dates.Range) ([]model.Task, error) {
	return append([]model.Task(nil), s.tasks...), nil
}

func (s *fakeStore) ListMembers(ctx context.Context) ([]model.Member, error) {
	return s.members, nil
}

func (s *fakeStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status, completedAt *time.Time) (*model.Task, error) {
	s.updates++
	if s.onUpdate != nil {
		s.onUpdate()
	}
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if s.silent {
		return nil, nil
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = status
			s.tasks[i].CompletedAt = completedAt
			t := s.tasks[i]
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func pendingIDs(tasks []model.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func newBoard(t *testing.T, store *fakeStore) *Board {
	t.Helper()
	b := NewBoard(store, january, Options{Clock: clock})
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return b
}

func TestBoard_Complete(t *testing.T) {
	is := is.New(t)
	store := &fakeStore{members: members, tasks: sampleTasks()}
	board := newBoard(t, store)
	is.Equal(pendingIDs(board.Pending()), []string{"C", "A", "B"})

	var duringUpdate []string
	store.onUpdate = func() { duringUpdate = pendingIDs(board.Pending()) }

	got, err := board.Complete(context.Background(), "A", dates.New(2025, time.January, 10))
	is.NoErr(err)
	is.Equal(got.Status, model.StatusCompleted)
	is.True(got.CompletedAt != nil)
	is.Equal(*got.CompletedAt, clock.Now())

	is.Equal(duringUpdate, []string{"C", "B"}) // gone before the store answered
	is.Equal(pendingIDs(board.Pending()), []string{"C", "B"})
	is.Equal(store.tasks[0].Status, model.StatusCompleted)

	bar, _ := board.Grid().Bar("A")
	is.Equal(bar.Task.Status, model.StatusCompleted)
}

func TestBoard_CompleteWithoutStoredCopy(t *testing.T) {
	is := is.New(t)
	store := &fakeStore{members: members, tasks: sampleTasks(), silent: true}
	board := newBoard(t, store)

	got, err := board.Complete(context.Background(), "A", dates.New(2025, time.January, 10))
	is.NoErr(err)
	is.Equal(got.ID, "A")
	is.Equal(got.Status, model.StatusCompleted)
	is.Equal(pendingIDs(board.Pending()), []string{"C", "B"})
}

func TestBoard_CompleteStoreFailure(t *testing.T) {
	is := is.New(t)
	store := &fakeStore{members: members, tasks: sampleTasks(), updateErr: errors.New("db down")}
	board := newBoard(t, store)

	_, err := board.Complete(context.Background(), "A", dates.New(2025, time.January, 10))
	is.True(errors.Is(err, ErrMutationFailed))
	is.True(errors.Is(err, store.updateErr))

	is.Equal(pendingIDs(board.Pending()), []string{"C", "A", "B"}) // restored by the reload
	bar, _ := board.Grid().Bar("A")
	is.Equal(bar.Task.Status, model.StatusPending)
}

func TestBoard_CompleteRejected(t *testing.T) {
	is := is.New(t)
	tasks := sampleTasks()
	tasks[2].Status = model.StatusCompleted
	store := &fakeStore{members: members, tasks: tasks}
	board := newBoard(t, store)
	ctx := context.Background()

	_, err := board.Complete(ctx, "A", dates.New(2025, time.January, 9))
	is.True(errors.Is(err, ErrNotCompletable))

	_, err = board.Complete(ctx, "C", dates.New(2025, time.January, 3))
	is.True(errors.Is(err, ErrNotCompletable))

	_, err = board.Complete(ctx, "nope", dates.New(2025, time.January, 3))
	is.True(errors.Is(err, ErrUnknownTask))

	is.Equal(store.updates, 0)
}

func TestBoard_LoadDropsDeletedAndOutOfWindow(t *testing.T) {
	is := is.New(t)
	tasks := sampleTasks()
	tasks[1].Status = model.StatusDeleted
	tasks = append(tasks, task("F", "m1", "2025-02-03", "2025-02-04"))
	store := &fakeStore{members: members, tasks: tasks}
	board := newBoard(t, store)

	is.Equal(pendingIDs(board.Pending()), []string{"C", "A"})
	_, ok := board.Grid().Bar("B")
	is.True(!ok)

	is.NoErr(board.SetWindow(context.Background(), dates.Month(2025, time.February)))
	is.Equal(board.Window(), dates.Month(2025, time.February))
	is.Equal(pendingIDs(board.Pending()), []string{"F"})
	is.Equal(len(board.Grid().Days), 28)
}

func TestBoard_PendingHonorsMemberFilter(t *testing.T) {
	is := is.New(t)
	store := &fakeStore{members: members, tasks: sampleTasks()}
	board := NewBoard(store, january, Options{Clock: clock, MemberID: "m1"})
	is.NoErr(board.Load(context.Background()))

	is.Equal(pendingIDs(board.Pending()), []string{"A", "B"})
	is.Equal(len(board.Grid().Columns), 1)
}
