package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/robalobadob/guessbot/internal/bot"
	"github.com/robalobadob/guessbot/internal/messages"
)

type eventKind int

const (
	eventIgnored eventKind = iota
	eventMessage
	eventSelection
)

// event is an update reduced to what the router needs.
type event struct {
	kind       eventKind
	message    bot.Message
	selection  bot.Selection
	callbackID string
}

// toEvent classifies an update. Only new messages and callback queries
// attached to a chat message are routed; everything else is ignored.
func toEvent(upd tgbotapi.Update) event {
	switch {
	case upd.Message != nil && upd.Message.Chat != nil:
		m := upd.Message
		out := bot.Message{ChatID: m.Chat.ID, Text: m.Text}
		if m.From != nil {
			out.SenderName = m.From.FirstName
			out.LanguageCode = m.From.LanguageCode
		}
		return event{kind: eventMessage, message: out}

	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil && upd.CallbackQuery.Message.Chat != nil:
		cq := upd.CallbackQuery
		sel := bot.Selection{ChatID: cq.Message.Chat.ID, Value: cq.Data}
		if cq.From != nil {
			sel.LanguageCode = cq.From.LanguageCode
		}
		return event{kind: eventSelection, selection: sel, callbackID: cq.ID}
	}
	return event{kind: eventIgnored}
}

// messageConfig builds the sendMessage request for r.
func messageConfig(r bot.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(r.ChatID, r.Text)
	if len(r.Keypad) > 0 {
		msg.ReplyMarkup = inlineKeyboard(r.Keypad)
	}
	return msg
}

// inlineKeyboard maps a keypad onto Telegram's inline keyboard, row by row.
func inlineKeyboard(kp messages.Keypad) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kp))
	for _, row := range kp {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
