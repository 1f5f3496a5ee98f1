package notify

import (
	"context"
	"errors"
)

// ErrTargetGone reports that the notification target no longer exists (the
// channel was deleted or the bot was removed from it). The caller must react
// by pruning the registration that pointed at the target; transient delivery
// failures never wrap this error.
var ErrTargetGone = errors.New("notification target no longer exists")

// Notifier delivers rendered messages to a chat channel.
type Notifier interface {
	// Send delivers text to the channel on behalf of userID. With mention set
	// the message pings the user, otherwise it is prefixed with their display
	// name so shared channels stay readable.
	Send(ctx context.Context, channelID int64, userID int64, mention bool, text string) error
}
