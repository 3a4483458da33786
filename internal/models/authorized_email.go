package models

import "time"

// SyncStatus mirrors the claim synchronizer outcome onto the record itself.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "PENDING"
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusError   SyncStatus = "ERROR"
)

// AuthorizedEmail marks an address whose account holder should carry the
// admin capability. The email itself is the key.
type AuthorizedEmail struct {
	Email        string     `db:"email" json:"email"`
	AddedAt      time.Time  `db:"added_at" json:"added_at"`
	LinkedUserID *string    `db:"linked_user_id" json:"linked_user_id,omitempty"`
	SyncStatus   SyncStatus `db:"sync_status" json:"sync_status"`
}
