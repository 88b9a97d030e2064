package chat

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

// Broadcaster delivers an event to every socket of a room.
type Broadcaster interface {
	EmitToRoom(room, event string, data any)
}

// Notifier writes system messages into a user's system_<id> room.
type Notifier struct {
	store Store
	hub   Broadcaster
	log   *zap.Logger
}

func NewNotifier(store Store, hub Broadcaster, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{store: store, hub: hub, log: log}
}

func (n *Notifier) Notify(ctx context.Context, userID uint, text string) error {
	msg := &Message{
		RoomID:   SystemRoomID(userID),
		SenderID: constants.SystemBotID,
		UserName: constants.SystemBotName,
		Text:     text,
		SendTime: time.Now(),
	}
	if err := n.store.SaveMessage(ctx, msg); err != nil {
		return errors.Wrapf(err, "save notification for user %d", userID)
	}
	if n.hub != nil {
		n.hub.EmitToRoom(msg.RoomID, constants.WSEventChatMessage, msg)
	}
	return nil
}

// NotifyAll sends each notification and only logs failures. Order and
// verification handlers call it after their transaction has committed.
func (n *Notifier) NotifyAll(ctx context.Context, notes map[uint]string) {
	for userID, text := range notes {
		if err := n.Notify(ctx, userID, text); err != nil {
			n.log.Warn("system notification failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
}
