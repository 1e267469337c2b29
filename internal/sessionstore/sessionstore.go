// Package sessionstore holds quiz session records in an expiring key-value
// store. Each adapter implements placequiz.SessionStore; absence and
// expiry both read back as "not found" rather than an error.
package sessionstore

import "time"

// KeyPrefix namespaces session keys in shared stores.
const KeyPrefix = "quiz_session:"

func key(id string) string {
	return KeyPrefix + id
}

// now is swapped in tests that exercise expiry.
var now = time.Now
