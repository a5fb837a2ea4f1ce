package digest

import (
	"crypto/sha1" // #nosec G505 - content addressing, not password hashing
	"encoding/hex"
	"io"

	"sigcast/internal/models"
)

// Message computes the content address of an outbound message: a 40-hex
// SHA-1 over sender, recipient, body, and each attachment's content digest.
// Presentation metadata (dimensions, content type, storage path) is
// excluded, so the same logical message hashes identically whether its
// attachments are in received or about-to-send shape.
func Message(msg *models.SdMessage) string {
	h := sha1.New() // #nosec G401
	writeField(h, msg.Sender)
	writeField(h, msg.Recipient)
	writeField(h, msg.Body)
	for _, att := range msg.Attachments {
		writeField(h, att.ContentDigest())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField separates fields with a NUL byte so adjacent fields cannot
// collide by concatenation.
func writeField(w io.Writer, field string) {
	_, _ = w.Write([]byte(field))
	_, _ = w.Write([]byte{0})
}
