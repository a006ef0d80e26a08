package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nurefexc/rss-bridge-ntfy/internal/domain"
)

// Entry derives the stable hex digest identifying a feed entry within a
// topic. The topic is part of the digest input so identical entries from
// different topics never collide.
func Entry(topic string, entry domain.FeedEntry) string {
	return Digest(topic, entry.Identity())
}

// Digest hashes "{topic}_{identity}" with SHA-256. Pure: no I/O, no state.
func Digest(topic, identity string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%s", topic, identity)))
	return hex.EncodeToString(sum[:])
}
