package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/lipgloss"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"team-tracker/internal/calendar"
	"team-tracker/internal/dates"
	"team-tracker/internal/model"
	"team-tracker/internal/period"
	"team-tracker/internal/repository"
	"team-tracker/internal/service"
)

var errAmbiguousID = errors.New("several pending tasks share this prefix")

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.subscribers.UpsertFromTelegram(ctx, msg.Chat.ID, msg.From.FirstName, msg.From.LastName, msg.From.UserName); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>This chat now receives the team report.</b>\n\nCommands:\n"+
			"• /summary [YYYY-MM] - month totals and progress\n"+
			"• /calendar [YYYY-MM] [member] - month calendar\n"+
			"• /pending - open tasks with complete buttons\n"+
			"• /done &lt;id&gt; - mark a task completed\n"+
			"• /goal YYYY-MM amount [points] - set monthly targets\n"+
			"• /newtask - add a task step by step\n"+
			"• /stop - stop receiving reports\n"+
			"• /help - hints",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStop(ctx context.Context, msg *tgbotapi.Message) error {
	if err := b.subscribers.Remove(ctx, msg.Chat.ID); err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, "🔕 Reports are off for this chat. /start turns them back on.")
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Hints</b>\n" +
		"• /summary 2025-01 - report for January 2025, current month without argument\n" +
		"• /calendar 2025-01 Aki - one member's lanes; names match case-insensitively\n" +
		"• /pending - tasks still open, earliest deadline first\n" +
		"• /done 3f2a9c1e - complete by the short ID shown in lists\n" +
		"• /goal 2025-01 5000000 500 - targets for January; points may be left out\n" +
		"• /newtask - title, member, dates, amount and points\n" +
		"• /cancel - abort the current input"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleSummary(ctx context.Context, chatID int64, args string) error {
	window := period.CurrentMonth(b.clock)
	if raw := strings.TrimSpace(args); raw != "" {
		parsed, err := period.ParseMonth(raw)
		if err != nil {
			return b.sendText(chatID, "Month must look like <code>2025-01</code>.")
		}
		window = parsed
	}

	report, err := b.reportSvc.Month(ctx, window)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
	}
	return b.sendText(chatID, service.FormatReport(report))
}

// handleCalendar draws the month as plain text. Arguments are an optional
// month followed by an optional member name.
func (b *Bot) handleCalendar(ctx context.Context, chatID int64, args string) error {
	window := period.CurrentMonth(b.clock)
	fields := strings.Fields(args)
	if len(fields) > 0 {
		if parsed, err := period.ParseMonth(fields[0]); err == nil {
			window = parsed
			fields = fields[1:]
		}
	}

	opts := calendar.Options{Clock: b.clock}
	if name := strings.Join(fields, " "); name != "" {
		members, err := b.store.ListMembers(ctx)
		if err != nil {
			return err
		}
		member, ok := findMember(members, name)
		if !ok {
			return b.sendText(chatID, fmt.Sprintf("No member called %s.", escape(name)))
		}
		opts.MemberID = member.ID
	}

	board := calendar.NewBoard(b.store, window, opts)
	if err := board.Load(ctx); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load the calendar: %s", escape(err.Error())))
	}

	text := calendar.Render(board.Grid(), lipgloss.NewRenderer(io.Discard))

	const wrap = len("<pre></pre>")
	body := escape(text)
	if len(body)+wrap > maxMessageLen {
		body = truncateLines(body, maxMessageLen-wrap-len("\n…")) + "\n…"
	}
	return b.sendText(chatID, "<pre>"+body+"</pre>")
}

func findMember(members []model.Member, name string) (model.Member, bool) {
	for _, m := range members {
		if strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(name)) {
			return m, true
		}
	}
	return model.Member{}, false
}

// truncateLines keeps whole lines while the text fits in limit bytes.
func truncateLines(s string, limit int) string {
	var out strings.Builder
	for _, line := range strings.Split(s, "\n") {
		if out.Len()+len(line)+1 > limit {
			break
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(line)
	}
	return out.String()
}

func (b *Bot) sendPendingList(ctx context.Context, chatID int64) error {
	tasks, err := b.taskSvc.Pending(ctx, "")
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "Nothing pending. 🎉")
	}

	members, err := b.store.ListMembers(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	today := dates.Today(b.clock)
	var builder strings.Builder
	builder.WriteString("📋 <b>Pending tasks</b>\n")
	builder.WriteString("Tap a button to mark a task completed.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		builder.WriteString(formatPending(task, names[task.MemberID], today))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ %s · %s", shortID(task.ID), shortTitle(task.Title, 24)),
				cbCompletePrefix+task.ID,
			),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func formatPending(task model.Task, member string, today dates.Date) string {
	span, _ := task.Span()
	icon := "🟢"
	switch {
	case span.End.Before(today):
		icon = "⚠️"
	case today.DaysUntil(span.End) <= 2:
		icon = "⏳"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s <b>%s</b> %s", icon, shortID(task.ID), escape(task.Title)))
	if member != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(member)))
	}
	if span.Start.Equal(span.End) {
		sb.WriteString(fmt.Sprintf("\n   📅 %s", span.End))
	} else {
		sb.WriteString(fmt.Sprintf("\n   📅 %s → %s", span.Start, span.End))
	}
	if task.Amount > 0 {
		sb.WriteString(fmt.Sprintf(" · %s", service.FormatAmount(task.Amount)))
	}
	sb.WriteString("\n\n")
	return sb.String()
}

// handleGoal sets the month's targets: /goal YYYY-MM amount [points].
func (b *Bot) handleGoal(ctx context.Context, msg *tgbotapi.Message) error {
	const usage = "Use <code>/goal 2025-01 5000000 500</code>: month, amount, optional points."

	fields := strings.Fields(msg.CommandArguments())
	if len(fields) < 2 || len(fields) > 3 {
		return b.sendText(msg.Chat.ID, usage)
	}
	amount, err := parseCount(fields[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, usage)
	}
	var points int64
	if len(fields) == 3 {
		if points, err = parseCount(fields[2]); err != nil {
			return b.sendText(msg.Chat.ID, usage)
		}
	}

	goal, err := b.reportSvc.SetGoal(ctx, fields[0], amount, points)
	if errors.Is(err, service.ErrInvalidGoal) {
		return b.sendText(msg.Chat.ID, usage)
	}
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not save the goal: %s", escape(err.Error())))
	}

	text := fmt.Sprintf("🎯 Targets for <b>%s</b>: %s", goal.Month, service.FormatAmount(goal.TargetAmount))
	if goal.TargetPoints > 0 {
		text += fmt.Sprintf(", %d points", goal.TargetPoints)
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Give the task ID: /done 3f2a9c1e")
	}

	id, err := b.resolveTaskID(ctx, args)
	if err != nil {
		if errors.Is(err, errAmbiguousID) {
			return b.sendText(msg.Chat.ID, "Several pending tasks start with that ID. Use more characters.")
		}
		return err
	}
	return b.completeTask(ctx, msg.Chat.ID, id)
}

// resolveTaskID expands a short ID against the pending list. Anything that
// does not match is passed through as a full ID.
func (b *Bot) resolveTaskID(ctx context.Context, prefix string) (string, error) {
	tasks, err := b.taskSvc.Pending(ctx, "")
	if err != nil {
		return "", err
	}
	var match string
	for _, t := range tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", errAmbiguousID
			}
			match = t.ID
		}
	}
	if match == "" {
		return prefix, nil
	}
	return match, nil
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, id string) error {
	task, err := b.taskSvc.Complete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return b.sendText(chatID, "Task not found.")
	case errors.Is(err, model.ErrInvalidTransition):
		return b.sendText(chatID, "This task is not pending.")
	case err != nil:
		return b.sendText(chatID, fmt.Sprintf("Error: %s", escape(err.Error())))
	}

	log.Printf("[info] task completed id=%s", task.ID)
	return b.sendText(chatID, fmt.Sprintf("✅ «%s» completed.", escape(task.Title)))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		b.ack(cb, "")
		id := strings.TrimPrefix(data, cbCompletePrefix)
		task, err := b.taskSvc.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		if err != nil {
			return err
		}
		if task.Status != model.StatusPending {
			return b.sendText(chatID, "This task is not pending.")
		}
		text := fmt.Sprintf("Mark «%s» as completed?", escape(task.Title))
		return b.sendWithReplyMarkup(chatID, text, confirmKeyboard(task.ID))
	case strings.HasPrefix(data, cbConfirmPrefix):
		b.ack(cb, "")
		id := strings.TrimPrefix(data, cbConfirmPrefix)
		log.Printf("[info] callback confirm complete user=%d task=%s", cb.From.ID, id)
		if err := b.completeTask(ctx, chatID, id); err != nil {
			return err
		}
		return b.sendPendingList(ctx, chatID)
	case strings.HasPrefix(data, cbCancelPrefix):
		b.ack(cb, "Cancelled")
		return nil
	default:
		b.ack(cb, "")
		return nil
	}
}

func confirmKeyboard(taskID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", cbConfirmPrefix+taskID),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Cancel", cbCancelPrefix+taskID),
		),
	)
}
