package model

import (
	"fmt"
	"time"
)

// Notification is a generated unblock notification. DedupeKey is unique
// per logical event so retries and concurrent cascades collapse to a
// single delivery.
type Notification struct {
	ID        int64     `json:"id"`
	NodeID    string    `json:"node_id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	DedupeKey string    `json:"dedupe_key"`
	CreatedAt time.Time `json:"created_at"`
}

// UnblockDedupeKey builds the deduplication key for an unblock notification
// of the given node to the given owner.
func UnblockDedupeKey(nodeID, ownerID string) string {
	return fmt.Sprintf("unblock:%s:%s", nodeID, ownerID)
}
