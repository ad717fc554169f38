package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"team-tracker/internal/calendar"
	"team-tracker/internal/dates"
	"team-tracker/internal/period"
	"team-tracker/internal/repository"
	"team-tracker/internal/service"
)

const (
	cbCompletePrefix = "complete:"
	cbConfirmPrefix  = "confirm:"
	cbCancelPrefix   = "cancel:"
)

const (
	btnSkip         = "⏭️ Skip"
	btnCancelDialog = "⏪ Cancel input"
	menuLabelNew    = "➕ New task"
	menuLabelPend   = "📋 Pending"
	menuLabelSum    = "📊 Summary"
	menuLabelCal    = "🗓 Calendar"
	menuLabelHelp   = "ℹ️ Help"
)

// Telegram rejects longer messages.
const maxMessageLen = 4096

// telegramAPI is the part of tgbotapi.BotAPI the handlers use.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot aggregates Telegram API with services.
type Bot struct {
	client        *tgbotapi.BotAPI
	api           telegramAPI
	subscribers   *repository.SubscriberRepository
	taskSvc       *service.TaskService
	reportSvc     *service.ReportService
	store         calendar.Store
	clock         dates.Clock
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

func New(token string, subscribers *repository.SubscriberRepository, taskSvc *service.TaskService, reportSvc *service.ReportService, store calendar.Store, clock dates.Clock) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", client.Self.UserName)

	b := newBot(client, subscribers, taskSvc, reportSvc, store, clock)
	b.client = client
	return b, nil
}

func newBot(api telegramAPI, subscribers *repository.SubscriberRepository, taskSvc *service.TaskService, reportSvc *service.ReportService, store calendar.Store, clock dates.Clock) *Bot {
	return &Bot{
		api:           api,
		subscribers:   subscribers,
		taskSvc:       taskSvc,
		reportSvc:     reportSvc,
		store:         store,
		clock:         clock,
		conversations: make(map[int64]*conversationState),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Task input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /help for the list of commands.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "stop":
		return b.handleStop(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "summary":
		return b.handleSummary(ctx, msg.Chat.ID, msg.CommandArguments())
	case "calendar":
		return b.handleCalendar(ctx, msg.Chat.ID, msg.CommandArguments())
	case "pending":
		return b.sendPendingList(ctx, msg.Chat.ID)
	case "done":
		return b.handleDone(ctx, msg)
	case "goal":
		return b.handleGoal(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Task input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(msg.Text) {
	case menuLabelNew:
		return true, b.startNewTaskConversation(msg)
	case menuLabelPend:
		return true, b.sendPendingList(ctx, msg.Chat.ID)
	case menuLabelSum:
		return true, b.handleSummary(ctx, msg.Chat.ID, "")
	case menuLabelCal:
		return true, b.handleCalendar(ctx, msg.Chat.ID, "")
	case menuLabelHelp:
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

// SendReports sends the current month's report to every subscriber.
func (b *Bot) SendReports(ctx context.Context) error {
	report, err := b.reportSvc.CurrentMonth(ctx)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	return b.broadcast(ctx, service.FormatReport(report))
}

// SendMonthClose sends the final report of the month that just ended.
func (b *Bot) SendMonthClose(ctx context.Context) error {
	report, err := b.reportSvc.Month(ctx, period.PreviousMonth(b.clock))
	if err != nil {
		return fmt.Errorf("build month close report: %w", err)
	}
	return b.broadcast(ctx, "🏁 <b>Month closed</b>\n\n"+service.FormatReport(report))
}

func (b *Bot) broadcast(ctx context.Context, text string) error {
	subs, err := b.subscribers.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(sub.TelegramID, text); err != nil {
			log.Printf("send report to %d: %v", sub.TelegramID, err)
		}
	}
	log.Printf("[info] report sent to %d subscribers", len(subs))
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.Printf("callback ack: %v", err)
	}
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelSum),
			tgbotapi.NewKeyboardButton(menuLabelCal),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelPend),
			tgbotapi.NewKeyboardButton(menuLabelNew),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// shortID is the prefix of a task ID shown in lists and accepted by /done.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
