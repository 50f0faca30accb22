package service

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

// ConfirmationCodeLength is the number of characters kept from the encoded
// digest.
const ConfirmationCodeLength = 18

// ConfirmationCode derives the purchase identifier shown to the buyer.  The
// inputs are hashed with SHA3-512, encoded with the URL-safe base64
// alphabet, truncated and upper-cased.  The timestamp makes two purchases
// of the same selection by the same user distinct.  The code is a display
// identifier, not a secret: ownership is always checked against the
// stored purchaser.
func ConfirmationCode(email, gameID string, at time.Time, q model.TicketCounts) string {
	var b strings.Builder
	b.WriteString(email)
	b.WriteString(gameID)
	b.WriteString(at.UTC().Format(time.RFC3339Nano))
	for _, t := range model.Tiers {
		b.WriteString(strconv.Itoa(q.Get(t)))
	}
	sum := sha3.Sum512([]byte(b.String()))
	enc := base64.URLEncoding.EncodeToString(sum[:])
	return strings.ToUpper(enc[:ConfirmationCodeLength])
}
