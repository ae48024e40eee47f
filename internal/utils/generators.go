package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID returns a random v4 UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateOrderID returns a prefixed order identifier.
func GenerateOrderID() string {
	return "order_" + uuid.NewString()
}

// GenerateSessionID returns a prefixed session identifier.
func GenerateSessionID() string {
	return fmt.Sprintf("sess_%s", uuid.NewString())
}

// UnixTimeToTime converts a unix seconds timestamp to time.Time.
func UnixTimeToTime(ts int64) time.Time {
	return time.Unix(ts, 0)
}
