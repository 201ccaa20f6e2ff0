package bot

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// resolveImage turns an uploaded photo into the opaque reference stored as
// the step's answer. The Telegram file URL is authoritative; copying the
// bytes into object storage is an enrichment, so a failed upload falls back
// to the Telegram URL instead of failing the answer.
func (b *Bot) resolveImage(ctx context.Context, chatID int64, photos []tgbotapi.PhotoSize) (string, error) {
	// Telegram sends several resolutions, largest last.
	photo := photos[len(photos)-1]

	file, err := b.bot.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("file %s has no path", photo.FileID)
	}

	fileURL := file.Link(b.bot.Token)

	if b.images == nil {
		return fileURL, nil
	}

	stored, err := b.archiveImage(ctx, chatID, file.FileID, fileURL)
	if err != nil {
		b.logger.Warn("Failed to archive image, keeping Telegram URL",
			zap.Int64("chat_id", chatID),
			zap.String("file_id", file.FileID),
			zap.Error(err))
		return fileURL, nil
	}
	return stored, nil
}

func (b *Bot) archiveImage(ctx context.Context, chatID int64, fileID, fileURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	key := fmt.Sprintf("uploads/%d/%s.jpg", chatID, fileID)
	return b.images.Store(ctx, key, resp.Body, resp.ContentLength, resp.Header.Get("Content-Type"))
}
