package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	tele "gopkg.in/telebot.v4"

	"github.com/oofcrazy123/futbin-price-monitor/internal/domain"
)

// Telegram delivers alerts to a single chat via the Bot API.
type Telegram struct {
	bot  *tele.Bot
	chat tele.ChatID
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: b, chat: tele.ChatID(chatID)}, nil
}

func (t *Telegram) SendAlert(ctx context.Context, a *domain.ExtinctAlert) error {
	if t == nil {
		return errors.New("telegram disabled")
	}
	text := fmt.Sprintf(
		"🔥 <b>EXTINCT PLAYER DETECTED!</b> 🔥\n\n"+
			"🃏 <b>%s</b>\n"+
			"⭐ Rating: %d\n"+
			"🏆 Position: %s\n"+
			"🏟️ Club: %s\n"+
			"🌍 Nation: %s\n\n"+
			"💰 <b>Status: EXTINCT</b>\n"+
			"📈 This player is not available on the market!\n\n"+
			"🔗 <a href=%q>View on FUT.GG</a>\n"+
			"⏰ %s",
		html.EscapeString(a.Name), a.Rating,
		html.EscapeString(orUnknown(a.Position)),
		html.EscapeString(orUnknown(a.Club)),
		html.EscapeString(orUnknown(a.Nation)),
		a.SourceURL,
		a.ObservedAt.Format("15:04:05"),
	)
	_, err := t.bot.Send(t.chat, text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func (t *Telegram) SendMessage(ctx context.Context, title, text string) error {
	if t == nil {
		return errors.New("telegram disabled")
	}
	msg := fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(text))
	_, err := t.bot.Send(t.chat, msg, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}
