package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Alerter delivers operator alerts.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// messageSender is the part of *tgbotapi.BotAPI used for alerts.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter posts Markdown alerts to a single admin chat.
// The zero value, and any alerter built without a token, is a no-op.
type TelegramAlerter struct {
	api    messageSender
	chatID int64
}

// NewTelegramAlerter authorizes against the Bot API. An empty token or chat id
// returns a disabled alerter.
func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	if token == "" || chatID == 0 {
		log.Println("Telegram alerts disabled")
		return &TelegramAlerter{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Telegram alerts authorized on account %s", bot.Self.UserName)
	return &TelegramAlerter{api: bot, chatID: chatID}, nil
}

// Enabled reports whether alerts are actually delivered.
func (a *TelegramAlerter) Enabled() bool {
	return a != nil && a.api != nil
}

// Alert sends text to the admin chat.
func (a *TelegramAlerter) Alert(ctx context.Context, text string) error {
	if !a.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(a.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := a.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}
