// Package bot is the Telegram shell around the questionnaire engine: it
// maps updates to engine events, executes the returned effects and owns the
// per-chat sequencing the engine relies on.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"curator-bot/internal/config"
	"curator-bot/internal/identity"
	"curator-bot/internal/questionnaire"
	"curator-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Bot struct {
	bot        *tgbotapi.BotAPI
	logger     *zap.Logger
	engine     *questionnaire.Engine
	sessions   *storage.SessionStore
	storage    *storage.PostgresStorage
	images     *storage.ImageStore
	provider   *identity.Provider
	cfg        *config.Config
	httpClient *http.Client

	// chatQueues serializes event handling per chat, preserving delivery
	// order; different chats run concurrently.
	chatQueues sync.Map
	wg         sync.WaitGroup
}

func New(
	engine *questionnaire.Engine,
	sessions *storage.SessionStore,
	pgStorage *storage.PostgresStorage,
	images *storage.ImageStore,
	provider *identity.Provider,
	cfg *config.Config,
	logger *zap.Logger,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return &Bot{
		bot:      botAPI,
		logger:   logger,
		engine:   engine,
		sessions: sessions,
		storage:  pgStorage,
		images:   images,
		provider: provider,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPRequestTimeout,
		},
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.bot.StopReceivingUpdates()
			b.wg.Wait()
			return nil

		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate routes one update to its chat's worker. Updates for the same
// chat are handled strictly in delivery order.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var chatID int64
	switch {
	case update.Message != nil:
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		return
	}

	queue, loaded := b.chatQueues.LoadOrStore(chatID, make(chan tgbotapi.Update, 16))
	ch := queue.(chan tgbotapi.Update)
	if !loaded {
		b.wg.Add(1)
		go b.runChatWorker(ctx, ch)
	}

	select {
	case ch <- update:
	default:
		b.logger.Warn("Chat queue full, dropping update",
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) runChatWorker(ctx context.Context, ch <-chan tgbotapi.Update) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-ch:
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			} else {
				b.processCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		ref, err := b.resolveImage(ctx, chatID, msg.Photo)
		if err != nil {
			b.logger.Error("Failed to resolve image",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
			b.sendError(chatID, "Couldn't read that image, please try again.")
			return
		}
		b.dispatch(ctx, chatID, questionnaire.ImageEvent{Ref: ref})
		return
	}

	if msg.Text != "" {
		b.dispatch(ctx, chatID, questionnaire.TextEvent{Text: msg.Text})
	}
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", callback.Data))

	ev, ok := parseChoiceCallback(callback)
	if !ok {
		b.answerCallback(callback.ID, "")
		return
	}
	b.dispatch(ctx, chatID, ev)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		payload := msg.CommandArguments()
		if handle, ok := strings.CutPrefix(payload, "twitter_success_"); ok && handle != "" {
			b.dispatch(ctx, chatID, questionnaire.VerifiedEvent{Handle: handle})
			return
		}
		b.dispatch(ctx, chatID, questionnaire.StartEvent{})
	case "help":
		b.handleHelp(chatID)
	case "export":
		b.handleExport(ctx, chatID)
	default:
		b.sendError(chatID, "Unknown command. Use /start to begin.")
	}
}

// dispatch runs one event through the engine. The session is persisted
// before any outbound effect is delivered; if persistence fails nothing is
// mutated and the user is asked to retry.
func (b *Bot) dispatch(ctx context.Context, chatID int64, ev questionnaire.Event) {
	session, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again later.")
		return
	}

	next, effects := b.engine.Handle(session, ev)

	if err := b.sessions.Put(ctx, next); err != nil {
		b.logger.Error("Failed to save session",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Something went wrong, please try again later.")
		return
	}

	b.renderEffects(ctx, chatID, effects)
}

func (b *Bot) handleHelp(chatID int64) {
	helpText := `Available commands:
/start - Connect your X account and fill in your project questionnaire
/help - Show this help

If you run into problems, contact the BorgPad team.`
	b.sendMessage(tgbotapi.NewMessage(chatID, helpText))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	if !b.isAdmin(chatID) {
		b.sendError(chatID, "Unknown command. Use /start to begin.")
		return
	}

	filepath, err := b.storage.ExportSubmissionsToExcel(ctx)
	if err != nil {
		b.logger.Error("Failed to export submissions",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Export failed, check the logs.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filepath))
	doc.Caption = fmt.Sprintf("📊 Submissions export %s", time.Now().Format("2006-01-02 15:04"))
	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Error("Failed to send export document",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (b *Bot) isAdmin(chatID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "❌ "+text))
}
