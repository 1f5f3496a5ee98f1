// internal/infra/telegram/notifier.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"

	"gopkg.in/telebot.v3"

	"hoyo_assistant_bot/internal/domain/notify"
)

// TelebotNotifier implements notify.Notifier using the gopkg.in/telebot.v3
// library.
type TelebotNotifier struct {
	bot *telebot.Bot
}

func NewTelebotNotifier(b *telebot.Bot) *TelebotNotifier {
	return &TelebotNotifier{bot: b}
}

// Send delivers text to the channel. With mention set the user is pinged via
// an inline mention link, otherwise the message is prefixed with their display
// name. Errors that mean the channel is permanently unreachable are wrapped
// in notify.ErrTargetGone so the caller can prune the registration.
func (n *TelebotNotifier) Send(ctx context.Context, channelID int64, userID int64, mention bool, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	recipient := &telebot.Chat{ID: channelID}
	options := &telebot.SendOptions{ParseMode: telebot.ModeHTML}

	body := html.EscapeString(text)
	if mention {
		body = fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`+"\n%s",
			userID, html.EscapeString(n.displayName(userID)), body)
	} else {
		body = html.EscapeString(n.displayName(userID)) + ": " + body
	}

	_, err := n.bot.Send(recipient, body, options)
	if err != nil {
		if isTargetGone(err) {
			return fmt.Errorf("%w: %s", notify.ErrTargetGone, err)
		}
		return fmt.Errorf("failed to send message to chat %d: %w", channelID, err)
	}
	return nil
}

// displayName resolves the user's first name, falling back to the raw ID when
// the lookup fails.
func (n *TelebotNotifier) displayName(userID int64) string {
	if chat, err := n.bot.ChatByID(userID); err == nil && chat.FirstName != "" {
		return chat.FirstName
	}
	return strconv.FormatInt(userID, 10)
}

func isTargetGone(err error) bool {
	for _, gone := range []error{
		telebot.ErrChatNotFound,
		telebot.ErrBlockedByUser,
		telebot.ErrUserIsDeactivated,
		telebot.ErrKickedFromGroup,
		telebot.ErrKickedFromSuperGroup,
		telebot.ErrKickedFromChannel,
		telebot.ErrNoRightsToSend,
		telebot.ErrNotStartedByUser,
	} {
		if errors.Is(err, gone) {
			return true
		}
	}
	return false
}
