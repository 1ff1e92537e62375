package domain

import "github.com/google/uuid"

// Broadcast is a resolved audience handed to the bot backend for delivery.
// Empty UserIDs means the bot applies its own default audience policy.
type Broadcast struct {
	ID      uuid.UUID
	Message string
	UserIDs []int64
}

// BroadcastReceipt is what the bot backend acknowledged.
type BroadcastReceipt struct {
	ID       uuid.UUID
	Targeted int
	Status   string
}
