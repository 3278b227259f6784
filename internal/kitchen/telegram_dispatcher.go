package kitchen

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPIのうち使う部分
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// 厨房のTelegramチャットへ伝票を送る
type TelegramDispatcher struct {
	bot    messageSender
	chatID int64
}

func NewTelegramDispatcher(token string, chatID int64) (*TelegramDispatcher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramDispatcher{bot: bot, chatID: chatID}, nil
}

func newTelegramDispatcher(bot messageSender, chatID int64) *TelegramDispatcher {
	return &TelegramDispatcher{bot: bot, chatID: chatID}
}

// 桁揃えを崩さないように<pre>で送る
func (d *TelegramDispatcher) Dispatch(ctx context.Context, t Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(d.chatID, "<pre>"+html.EscapeString(t.Text)+"</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := d.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
