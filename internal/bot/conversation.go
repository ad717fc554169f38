package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"team-tracker/internal/dates"
	"team-tracker/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageMember
	stageDates
	stageAmount
	stagePoints
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what is it called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageMember
		return b.sendWithReplyMarkup(msg.Chat.ID, "👤 <b>Step 2:</b> who owns it? Send a member name.", cancelKeyboard())
	case stageMember:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Send a member name.", cancelKeyboard())
		}
		state.input.MemberName = text
		state.stage = stageDates
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 <b>Step 3:</b> dates as <code>2025-01-05</code> or <code>2025-01-05 2025-01-10</code>.", cancelKeyboard())
	case stageDates:
		span, err := parseSpan(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Could not read the dates. Use <code>2025-01-05</code> or <code>2025-01-05 2025-01-10</code>, start first.", cancelKeyboard())
		}
		state.input.StartDate = &span.Start
		state.input.EndDate = &span.End
		state.stage = stageAmount
		return b.sendWithReplyMarkup(msg.Chat.ID, "💴 <b>Step 4:</b> amount in yen (or skip).", skipKeyboard())
	case stageAmount:
		if !isSkipInput(text) {
			n, err := parseCount(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "The amount must be a whole number of yen, like <code>12000</code>.", skipKeyboard())
			}
			state.input.Amount = n
		}
		state.stage = stagePoints
		return b.sendWithReplyMarkup(msg.Chat.ID, "⭐ <b>Step 5:</b> points (or skip).", skipKeyboard())
	case stagePoints:
		if !isSkipInput(text) {
			n, err := parseCount(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Points must be a whole number.", skipKeyboard())
			}
			state.input.Points = n
		}
		err := b.finishTaskCreation(ctx, msg.Chat.ID, state.input)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Try again with /newtask.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input service.TaskInput) error {
	task, err := b.taskSvc.Create(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not save the task: %s", escape(err.Error())))
	}

	log.Printf("[info] task created id=%s member=%s", task.ID, task.MemberID)

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> <code>%s</code>\n", shortID(task.ID)))
	summary.WriteString(fmt.Sprintf("• <b>Title:</b> %s\n", escape(task.Title)))
	summary.WriteString(fmt.Sprintf("• <b>Member:</b> %s\n", escape(input.MemberName)))
	summary.WriteString(fmt.Sprintf("• <b>Dates:</b> %s → %s\n", task.StartDate, task.EndDate))
	if task.Amount > 0 {
		summary.WriteString(fmt.Sprintf("• <b>Amount:</b> %s\n", service.FormatAmount(task.Amount)))
	}
	if task.Points > 0 {
		summary.WriteString(fmt.Sprintf("• <b>Points:</b> %d\n", task.Points))
	}
	return b.sendText(chatID, strings.TrimSpace(summary.String()))
}

// parseSpan reads one date or a start and end pair.
func parseSpan(text string) (dates.Range, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return dates.Range{}, fmt.Errorf("want one or two dates, got %d", len(fields))
	}
	start, err := dates.Parse(fields[0])
	if err != nil {
		return dates.Range{}, err
	}
	end := start
	if len(fields) == 2 {
		if end, err = dates.Parse(fields[1]); err != nil {
			return dates.Range{}, err
		}
	}
	r := dates.NewRange(start, end)
	if !r.Valid() {
		return dates.Range{}, fmt.Errorf("end %s before start %s", end, start)
	}
	return r, nil
}

// parseCount accepts digits with optional thousands separators.
func parseCount(text string) (int64, error) {
	clean := strings.NewReplacer(",", "", "_", "", "¥", "", " ", "").Replace(text)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}
