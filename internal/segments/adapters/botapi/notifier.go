package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"finbot-admin-api/internal/segments/core/domain"
	"finbot-admin-api/internal/segments/core/ports"

	"github.com/gofiber/fiber/v2"
)

const (
	broadcastPath  = "/api/notifications/broadcast"
	defaultTimeout = 30 * time.Second
)

// Notifier feeds resolved audiences to the bot backend, which owns the
// actual message delivery, rate limiting, and per-user opt-outs.
type Notifier struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func NewNotifier(baseURL, apiKey string) *Notifier {
	return &Notifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: defaultTimeout,
	}
}

var _ ports.BroadcastPort = (*Notifier)(nil)

type broadcastPayload struct {
	BroadcastID string  `json:"broadcast_id"`
	Message     string  `json:"message"`
	UserIDs     []int64 `json:"user_ids,omitempty"`
}

type broadcastReply struct {
	Status string `json:"status"`
}

func (n *Notifier) SendBroadcast(ctx context.Context, b domain.Broadcast) (domain.BroadcastReceipt, error) {
	agent := fiber.Post(n.baseURL + broadcastPath)
	agent.Timeout(n.timeout)
	agent.Set("X-Api-Key", n.apiKey)
	agent.JSON(broadcastPayload{
		BroadcastID: b.ID.String(),
		Message:     b.Message,
		UserIDs:     b.UserIDs,
	})

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return domain.BroadcastReceipt{}, errs[0]
	}
	if code < 200 || code >= 300 {
		return domain.BroadcastReceipt{}, fmt.Errorf("bot backend returned %d: %s", code, body)
	}

	receipt := domain.BroadcastReceipt{
		ID:       b.ID,
		Targeted: len(b.UserIDs),
		Status:   "accepted",
	}
	var reply broadcastReply
	if err := json.Unmarshal(body, &reply); err == nil && reply.Status != "" {
		receipt.Status = reply.Status
	}
	return receipt, nil
}
