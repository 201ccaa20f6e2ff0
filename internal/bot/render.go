package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"curator-bot/internal/questionnaire"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// renderEffects executes the engine's effects in order. A failed
// PersistSubmission stops the sequence so the user never sees a success
// summary for a record that was not stored.
func (b *Bot) renderEffects(ctx context.Context, chatID int64, effects []questionnaire.Effect) {
	for _, effect := range effects {
		switch eff := effect.(type) {
		case questionnaire.SendText:
			b.sendMessage(tgbotapi.NewMessage(chatID, eff.Text))

		case questionnaire.SendPrompt:
			b.sendPrompt(chatID, eff)

		case questionnaire.AckChoice:
			b.answerCallback(eff.CallbackID, eff.Text)

		case questionnaire.RequestVerification:
			b.sendVerificationOffer(ctx, chatID)

		case questionnaire.PersistSubmission:
			if err := b.persistSubmission(ctx, eff.Submission); err != nil {
				b.logger.Error("Failed to persist submission",
					zap.Int64("chat_id", chatID),
					zap.Error(err))
				b.sendError(chatID, "Couldn't save your submission, please send /start to try again.")
				return
			}

		case questionnaire.NotifyOperator:
			b.notifyOperator(eff.Text)
		}
	}
}

func (b *Bot) sendPrompt(chatID int64, prompt questionnaire.SendPrompt) {
	msg := tgbotapi.NewMessage(chatID, prompt.Step.Prompt)
	if prompt.Step.Kind == questionnaire.ChoiceButtons {
		msg.ReplyMarkup = choiceKeyboard(prompt.Step.Index, prompt.Options)
	}
	b.sendMessage(msg)
}

func (b *Bot) sendVerificationOffer(ctx context.Context, chatID int64) {
	authURL, err := b.provider.BeginVerification(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to begin verification",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Sorry, there was an error setting up X authentication. Please try again later.")
		return
	}

	msg := tgbotapi.NewMessage(chatID,
		"Welcome! 👋\n\nI'm the BorgPad Curator Bot. I'll help you to create your commitment page on BorgPad.\n\nFirst, please connect your X account:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Connect with X 🐦", authURL),
		),
	)
	b.sendMessage(msg)
}

func (b *Bot) persistSubmission(ctx context.Context, sub questionnaire.CompletedSubmission) error {
	if err := b.storage.UpsertSubmission(ctx, sub); err != nil {
		return err
	}
	key := strconv.FormatInt(sub.UserID, 10)
	return b.storage.UpsertDocument(ctx, key, sub.Document())
}

func (b *Bot) notifyOperator(text string) {
	if b.cfg.OperatorChannelID == 0 {
		b.logger.Warn("Operator notifications disabled - no channel ID configured")
		return
	}

	msg := tgbotapi.NewMessage(b.cfg.OperatorChannelID, text)
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send operator notification",
			zap.Int64("channel_id", b.cfg.OperatorChannelID),
			zap.Error(err))
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.bot.Request(callback); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

// choiceKeyboard lays out a step's options two buttons per row. Callback
// data carries the step index so stale presses can be detected.
func choiceKeyboard(stepIndex int, options []questionnaire.Choice) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, opt := range options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			opt.Label,
			fmt.Sprintf("choice:%d:%s", stepIndex, opt.Value),
		))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// parseChoiceCallback decodes "choice:<step>:<value>" callback data.
func parseChoiceCallback(callback *tgbotapi.CallbackQuery) (questionnaire.ChoiceEvent, bool) {
	parts := strings.SplitN(callback.Data, ":", 3)
	if len(parts) != 3 || parts[0] != "choice" {
		return questionnaire.ChoiceEvent{}, false
	}

	stepIndex, err := strconv.Atoi(parts[1])
	if err != nil {
		return questionnaire.ChoiceEvent{}, false
	}

	return questionnaire.ChoiceEvent{
		StepIndex:  stepIndex,
		Value:      parts[2],
		CallbackID: callback.ID,
	}, true
}
