// Package statestore is a small get/set/clear repository for the locally
// persisted session state: the signed-in user record and the advisory
// registered/online counters. UI code never touches the storage primitive
// directly; any backend can be substituted behind the Store interface.
package statestore

import (
	"encoding/json"
	"strconv"
)

// Well-known keys.
const (
	KeyUser       = "champlink_user"
	KeyRegistered = "champlink_registered"
	KeyOnline     = "champlink_online"
)

// Store is the persisted key/value surface. Values are opaque bytes;
// last writer wins.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Clear(key string)
}

// UserRecord is the persisted shape of the signed-in user. The platform
// only reads and writes it for display; no business rules are derived
// from it locally.
type UserRecord struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	IsAdmin     bool   `json:"isAdmin"`
}

// SaveUser persists the user record.
func SaveUser(s Store, u UserRecord) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.Set(KeyUser, raw)
}

// LoadUser reads the persisted user record. A missing or malformed entry
// is treated as logged out; malformed entries are discarded.
func LoadUser(s Store) (UserRecord, bool) {
	raw, ok := s.Get(KeyUser)
	if !ok {
		return UserRecord{}, false
	}
	var u UserRecord
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == 0 {
		s.Clear(KeyUser)
		return UserRecord{}, false
	}
	return u, true
}

// ClearUser logs the user out.
func ClearUser(s Store) {
	s.Clear(KeyUser)
}

// Counter reads a numeric counter, zero when absent or malformed.
func Counter(s Store, key string) int {
	raw, ok := s.Get(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0
	}
	return n
}

// SetCounter writes a numeric counter.
func SetCounter(s Store, key string, value int) error {
	return s.Set(key, []byte(strconv.Itoa(value)))
}
