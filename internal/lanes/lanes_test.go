package lanes

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/matryer/is"

	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
)

var january = dates.Month(2025, time.January)

func task(id, start, end string) model.Task {
	s, e := dates.MustParse(start), dates.MustParse(end)
	return model.Task{ID: id, MemberID: "m", Status: model.StatusPending, StartDate: &s, EndDate: &e}
}

func lanesByID(placements []Placement) map[string]int {
	out := make(map[string]int, len(placements))
	for _, p := range placements {
		out[p.Entry.Task().ID] = p.Lane
	}
	return out
}

func assertNoConflict(t *testing.T, placements []Placement) {
	t.Helper()
	for i, a := range placements {
		for _, b := range placements[i+1:] {
			if a.Lane == b.Lane && a.Entry.Span().Overlaps(b.Entry.Span()) {
				t.Fatalf("%s and %s share lane %d and overlap", a.Entry.Task().ID, b.Entry.Task().ID, a.Lane)
			}
		}
	}
}

func TestAssign_Scenario(t *testing.T) {
	is := is.New(t)
	tasks := []model.Task{
		task("A", "2025-01-05", "2025-01-10"),
		task("B", "2025-01-08", "2025-01-12"),
		task("C", "2025-01-11", "2025-01-15"),
	}
	placements := Assign(period.Schedule(tasks), january)
	lanes := lanesByID(placements)

	is.True(lanes["A"] != lanes["B"])
	is.True(lanes["C"] != lanes["B"])
	is.Equal(lanes["A"], 0)
	is.Equal(lanes["B"], 1)
	is.Equal(lanes["C"], 0) // C only touches B
	is.Equal(Count(placements), 2)
	assertNoConflict(t, placements)
}

func TestAssign_CenturiesLongTask(t *testing.T) {
	is := is.New(t)
	tasks := []model.Task{
		task("long", "1500-01-01", "2100-12-31"),
		task("short", "2025-01-10", "2025-01-10"),
	}
	placements := Assign(period.Schedule(tasks), january)
	lanes := lanesByID(placements)

	is.Equal(lanes["long"], 0)
	is.Equal(lanes["short"], 1)
	assertNoConflict(t, placements)

	long := placements[0]
	is.Equal(long.Entry.Task().ID, "long")
	is.Equal(long.StartRow, 0)
	is.Equal(long.RowSpan, 31)
	is.True(long.ClippedStart)
	is.True(long.ClippedEnd)
}

func TestAssign_Rows(t *testing.T) {
	is := is.New(t)
	placements := Assign(period.Schedule([]model.Task{task("A", "2025-01-05", "2025-01-10")}), january)
	is.Equal(len(placements), 1)
	is.Equal(placements[0].StartRow, 4)
	is.Equal(placements[0].RowSpan, 6)
	is.True(!placements[0].ClippedStart)
	is.True(!placements[0].ClippedEnd)
}

func TestAssign_LongerTaskWinsTies(t *testing.T) {
	is := is.New(t)
	tasks := []model.Task{
		task("short", "2025-01-05", "2025-01-06"),
		task("long", "2025-01-05", "2025-01-20"),
	}
	lanes := lanesByID(Assign(period.Schedule(tasks), january))
	is.Equal(lanes["long"], 0)
	is.Equal(lanes["short"], 1)
}

func TestAssign_IdenticalTasksAreNotMerged(t *testing.T) {
	is := is.New(t)
	tasks := []model.Task{
		task("x", "2025-01-07", "2025-01-07"),
		task("y", "2025-01-07", "2025-01-07"),
		task("z", "2025-01-07", "2025-01-07"),
	}
	placements := Assign(period.Schedule(tasks), january)
	is.Equal(Count(placements), 3)
	assertNoConflict(t, placements)
}

func TestAssign_Clamping(t *testing.T) {
	tasks := []model.Task{
		task("carry", "2024-12-20", "2025-01-03"),
		task("dec", "2024-12-28", "2025-01-02"),
		task("jan", "2025-01-02", "2025-01-04"),
	}
	placements := Assign(period.Schedule(tasks), january)

	t.Run("rows are clamped to the view", func(t *testing.T) {
		is := is.New(t)
		for _, p := range placements {
			if p.Entry.Task().ID != "carry" {
				continue
			}
			is.Equal(p.StartRow, 0)
			is.Equal(p.RowSpan, 3)
			is.True(p.ClippedStart)
			is.True(!p.ClippedEnd)
		}
	})

	t.Run("lanes come from the true span", func(t *testing.T) {
		is := is.New(t)
		lanes := lanesByID(placements)
		is.Equal(lanes["carry"], 0)
		is.Equal(lanes["dec"], 1)
		is.Equal(lanes["jan"], 2)

		// the same tasks seen from December keep their relative lanes
		december := lanesByID(Assign(period.Schedule(tasks[:2]), dates.Month(2024, time.December)))
		is.Equal(december["carry"], lanes["carry"])
		is.Equal(december["dec"], lanes["dec"])
	})

	t.Run("tasks outside the view are ignored", func(t *testing.T) {
		is := is.New(t)
		placements := Assign(period.Schedule([]model.Task{task("feb", "2025-02-01", "2025-02-02")}), january)
		is.Equal(len(placements), 0)
	})
}

func TestAssign_DeletedNeverPlaced(t *testing.T) {
	is := is.New(t)
	gone := task("gone", "2025-01-05", "2025-01-10")
	gone.Status = model.StatusDeleted
	placements := Assign(period.Schedule([]model.Task{gone, task("kept", "2025-01-05", "2025-01-10")}), january)
	is.Equal(len(placements), 1)
	is.Equal(placements[0].Entry.Task().ID, "kept")
	is.Equal(placements[0].Lane, 0)
}

func randomTasks(r *rand.Rand, n int) []model.Task {
	out := make([]model.Task, 0, n)
	for i := 0; i < n; i++ {
		start := dates.New(2024, time.December, 20).AddDays(r.Intn(50))
		end := start.AddDays(r.Intn(8))
		out = append(out, task(fmt.Sprintf("t%02d", i), start.String(), end.String()))
	}
	return out
}

func TestAssign_NoConflictRandomized(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		placements := Assign(period.Schedule(randomTasks(r, 1+r.Intn(25))), january)
		assertNoConflict(t, placements)
	}
}

func TestAssign_StableWhenAddingDisjointTask(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		tasks := randomTasks(r, 1+r.Intn(15))
		before := lanesByID(Assign(period.Schedule(tasks), january))

		// find a day in January nobody occupies
		var free dates.Date
		for _, d := range january.Days() {
			taken := false
			for _, tk := range tasks {
				if tk.Occupies(d) {
					taken = true
					break
				}
			}
			if !taken {
				free = d
				break
			}
		}
		if free.IsZero() {
			continue
		}

		extended := append(append([]model.Task(nil), tasks...), task("new", free.String(), free.String()))
		after := lanesByID(Assign(period.Schedule(extended), january))
		for id, lane := range before {
			if after[id] != lane {
				t.Fatalf("round %d: lane of %s moved from %d to %d", round, id, lane, after[id])
			}
		}
		if after["new"] != 0 {
			t.Fatalf("round %d: disjoint task should take lane 0, got %d", round, after["new"])
		}
	}
}

func TestAssign_Stateless(t *testing.T) {
	is := is.New(t)
	entries := period.Schedule(randomTasks(rand.New(rand.NewSource(3)), 20))
	is.Equal(Assign(entries, january), Assign(entries, january))
}
