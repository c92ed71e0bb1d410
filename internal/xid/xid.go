package xid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a prefixed random identifier used to correlate log lines,
// e.g. "req-3f0c...". It is never used as a record key.
func New(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
