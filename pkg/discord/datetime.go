package discord

import (
	"fmt"
	"time"
)

// RelativeTimestamp renders t as a Discord timestamp tag shown relative to
// the reader's clock ("in 3 days").
func RelativeTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}
