package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AdminClaim is the capability key managed by the claim synchronizer.
const AdminClaim = "admin"

// ClaimSet is a merge-semantics capability map attached to an identity,
// stored as a JSONB column.
type ClaimSet map[string]interface{}

// HasAdmin reports whether the admin capability is present and true.
func (c ClaimSet) HasAdmin() bool {
	v, ok := c[AdminClaim].(bool)
	return ok && v
}

// Value implements driver.Valuer.
func (c ClaimSet) Value() (driver.Value, error) {
	if c == nil {
		c = ClaimSet{}
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *ClaimSet) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*c = ClaimSet{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("unsupported claim set type %T", src)
	}
}

// Identity is a user account resolved through the identity provider.
type Identity struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Claims    ClaimSet  `db:"claims" json:"claims"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
