package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"team-tracker/internal/calendar"
	"team-tracker/internal/config"
	"team-tracker/internal/dates"
	"team-tracker/internal/period"
	"team-tracker/internal/repository"
	"team-tracker/internal/service"
)

var (
	dbPath = flag.String("db", "", "Path to the sqlite database (defaults to DATABASE_URL)")
	month  = flag.String("month", "", "Month to print as YYYY-MM (defaults to the current month)")
	member = flag.String("member", "", "Only show this member's tasks")
)

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	check(err)
	if *dbPath != "" {
		cfg.DatabaseURL = *dbPath
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	check(err)

	clock := dates.SystemClock(cfg.Location)
	window := period.CurrentMonth(clock)
	if *month != "" {
		window, err = period.ParseMonth(*month)
		check(err)
	}

	taskRepo := repository.NewTaskRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	store := repository.NewStore(taskRepo, memberRepo)
	ctx := context.Background()

	opts := calendar.Options{Clock: clock}
	if *member != "" {
		members, err := memberRepo.List(ctx)
		check(err)
		for _, m := range members {
			if strings.EqualFold(m.Name, *member) {
				opts.MemberID = m.ID
			}
		}
		if opts.MemberID == "" {
			log.Fatalf("no member called %q", *member)
		}
	}

	board := calendar.NewBoard(store, window, opts)
	check(board.Load(ctx))
	fmt.Println(calendar.Render(board.Grid(), lipgloss.DefaultRenderer()))

	pending := board.Pending()
	fmt.Printf("\nPending (%d)\n", len(pending))
	for _, t := range pending {
		span, _ := t.Span()
		fmt.Printf("  %s  %-24s %s\n", span.End, t.Title, service.FormatAmount(t.Amount))
	}

	reports := service.NewReportService(taskRepo, memberRepo, repository.NewGoalRepository(db), clock)
	report, err := reports.Month(ctx, window)
	check(err)
	fmt.Printf("\nCompleted %s of %s (%d%%), forecast %s\n",
		service.FormatAmount(report.Summary.CompletedAmount),
		service.FormatAmount(report.Targets.Amount),
		report.Progress.Amount,
		service.FormatAmount(report.Summary.ForecastAmount()),
	)
}
