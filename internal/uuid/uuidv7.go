package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7 string. The leading 48 bits carry the Unix
// timestamp in milliseconds, so keys generated later sort after keys
// generated earlier, which keeps the unique index on the key column
// append-mostly.
func New() string {
	var uuid [16]byte

	binary.BigEndian.PutUint64(uuid[0:8], uint64(time.Now().UnixMilli())<<16)

	if _, err := rand.Read(uuid[6:]); err != nil {
		// crypto/rand should never fail; fall back to a v4 key.
		return googleuuid.New().String()
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(uuid[0:4]),
		binary.BigEndian.Uint16(uuid[4:6]),
		binary.BigEndian.Uint16(uuid[6:8]),
		binary.BigEndian.Uint16(uuid[8:10]),
		uuid[10:16],
	)
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
