package broadcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"skipfurther/internal/domain/entity"
)

const channelPrefix = "notifications:"

// Deliverer hands a serialized event to a user's local connections.
type Deliverer interface {
	SendToUser(userID string, message []byte) int
}

func channelFor(userID string) string {
	return channelPrefix + userID
}

func userFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, channelPrefix) {
		return "", false
	}
	userID := strings.TrimPrefix(channel, channelPrefix)
	return userID, userID != ""
}

func encode(userID string, event *entity.Event) ([]byte, error) {
	event.UserID = userID
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return payload, nil
}

// LocalBroadcaster delivers straight to this instance's connections.
type LocalBroadcaster struct {
	deliverer Deliverer
}

func NewLocalBroadcaster(deliverer Deliverer) *LocalBroadcaster {
	return &LocalBroadcaster{deliverer: deliverer}
}

func (b *LocalBroadcaster) Publish(ctx context.Context, userID string, event *entity.Event) error {
	payload, err := encode(userID, event)
	if err != nil {
		return err
	}
	b.deliverer.SendToUser(userID, payload)
	return nil
}
