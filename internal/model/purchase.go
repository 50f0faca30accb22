package model

import "time"

// Purchase is one entry of the purchase ledger.  Entries are never deleted;
// cancelling only flips IsValid to false and records a memo.  A partial
// refund closes the original entry and appends a new one for the retained
// tickets, pointing back through Supersedes.
//
// Fields:
//
//	ID         – confirmation code shown to the purchaser.
//	GameID     – game the tickets are for.
//	UserEmail  – purchaser identifier.
//	IsValid    – true while the entry counts against capacity.
//	RefundMemo – optional note attached on cancellation.
//	Tickets    – quantities purchased per tier.
//	Supersedes – ID of the entry this one replaced, if any.
//	CreatedAt  – creation timestamp (UTC).
type Purchase struct {
	ID         string       `json:"id"`                   // purchase.id
	GameID     string       `json:"gameId"`               // purchase.game_id
	UserEmail  string       `json:"userEmail"`            // purchase.user_email
	IsValid    bool         `json:"isValid"`              // purchase.is_valid
	RefundMemo *string      `json:"refundMemo,omitempty"` // purchase.refund_memo (nullable)
	Tickets    TicketCounts `json:"tickets"`              // purchase.platinum .. purchase.bronze
	Supersedes *string      `json:"supersedes,omitempty"` // purchase.supersedes (nullable)
	CreatedAt  time.Time    `json:"createdAt"`            // purchase.created_at
}
