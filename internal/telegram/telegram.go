// Package telegram sends service notifications to a Telegram chat. Without a
// bot token every call is a no-op.
package telegram

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"WooCostAdjuster/internal/config"
	"WooCostAdjuster/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
)

// requestTimeout bounds a single Bot API call.
const requestTimeout = 10 * time.Second

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

var (
	botGlobal *Bot
	mu        sync.Mutex
)

// NewBot connects to the Bot API. An empty token yields a disabled bot.
func NewBot(token string, chatID int64, debug bool) (*Bot, error) {
	return NewBotWithClient(token, chatID, debug, newHTTPClient())
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

func NewBotWithClient(token string, chatID int64, debug bool, client *http.Client) (*Bot, error) {
	if token == "" {
		return &Bot{chatID: chatID}, nil
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, client)
	if err != nil {
		return nil, errors.Wrap(err, "failed tgbotapi.NewBotAPI")
	}
	api.Debug = debug
	return &Bot{api: api, chatID: chatID}, nil
}

func (b *Bot) Enabled() bool {
	return b != nil && b.api != nil && b.chatID != 0
}

func (b *Bot) SendMessage(text string) error {
	if !b.Enabled() {
		return nil
	}
	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		return errors.Wrap(err, "failed bot.Send")
	}
	return nil
}

// Notify sends the text and only logs a failure.
func (b *Bot) Notify(text string) {
	if err := b.SendMessage(text); err != nil {
		logging.GetLogger().Errorf("failed telegram.SendMessage(), error: %v", err)
	}
}

// Listen answers /start and /chatid with the chat ID, which is what goes
// into the TELEGRAM ChatID setting.
func (b *Bot) Listen() error {
	if b == nil || b.api == nil {
		return nil
	}
	logger := logging.GetLogger()
	logger.Info("Start telegram.Listen")
	defer logger.Info("End telegram.Listen")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 5
	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return errors.Wrap(err, "failed GetUpdatesChan")
	}

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		switch update.Message.Command() {
		case "start", "chatid":
			reply := tgbotapi.NewMessage(update.Message.Chat.ID, "Chat ID: "+strconv.FormatInt(update.Message.Chat.ID, 10))
			if _, err := b.api.Send(reply); err != nil {
				logger.Errorf("failed to answer %s: %v", update.Message.Command(), err)
			}
		}
	}
	return nil
}

// BotStart builds the process bot from the TELEGRAM config section and listens for commands.
func BotStart() {
	logger := logging.GetLogger()
	cfg := config.GetConfig()

	bot, err := NewBot(cfg.TELEGRAM.BotToken, cfg.TELEGRAM.ChatID, cfg.TELEGRAM.Debug != 0)
	if err != nil {
		logger.Errorf("failed telegram.NewBot(), error: %v", err)
		return
	}
	SetBot(bot)

	if err := bot.Listen(); err != nil {
		logger.Errorf("failed telegram.Listen(), error: %v", err)
	}
}

func SetBot(b *Bot) {
	mu.Lock()
	defer mu.Unlock()
	botGlobal = b
}

func GetBot() *Bot {
	mu.Lock()
	defer mu.Unlock()
	return botGlobal
}

func SendMessage(text string) error {
	return GetBot().SendMessage(text)
}

func SendMessageToTelegramWithLogError(text string) {
	GetBot().Notify(text)
}
