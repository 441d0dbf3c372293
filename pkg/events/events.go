package events

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
)

// Event is emitted by a successful workflow transition and routed to
// notification recipients by its type.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       enums.EventType `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	ActorID    uuid.UUID       `json:"actorId"`
	Payload    Payload         `json:"payload"`
}

// Payload is the single canonical field set every event carries. Fields that
// do not apply to an event are left empty.
type Payload struct {
	MRFID         string          `json:"mrfId,omitempty"`
	MRFTitle      string          `json:"mrfTitle,omitempty"`
	PONumber      string          `json:"poNumber,omitempty"`
	GRNID         string          `json:"grnId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
	Vendor        string          `json:"vendor,omitempty"`
	RequesterID   uuid.UUID       `json:"requesterId"`
	RequesterName string          `json:"requesterName,omitempty"`
	Department    string          `json:"department,omitempty"`
	ActorName     string          `json:"actorName,omitempty"`
	Urgency       string          `json:"urgency,omitempty"`
	Stage         string          `json:"stage,omitempty"`
}

// New stamps a fresh event id and occurrence time.
func New(eventType enums.EventType, actorID uuid.UUID, at time.Time, payload Payload) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		ActorID:    actorID,
		Payload:    payload.normalized(),
	}
}

func (p Payload) normalized() Payload {
	p.MRFID = strings.TrimSpace(p.MRFID)
	p.MRFTitle = strings.TrimSpace(p.MRFTitle)
	p.PONumber = strings.TrimSpace(p.PONumber)
	p.GRNID = strings.TrimSpace(p.GRNID)
	p.Reason = strings.TrimSpace(p.Reason)
	p.Vendor = strings.TrimSpace(p.Vendor)
	p.RequesterName = strings.TrimSpace(p.RequesterName)
	p.Department = strings.TrimSpace(p.Department)
	p.ActorName = strings.TrimSpace(p.ActorName)
	p.Urgency = strings.TrimSpace(p.Urgency)
	p.Stage = strings.TrimSpace(p.Stage)
	return p
}

// Fields returns the template substitution map keyed by the canonical field
// names. Every key is always present so templates only fail on unknown tags.
func (p Payload) Fields() map[string]string {
	requesterID := ""
	if p.RequesterID != uuid.Nil {
		requesterID = p.RequesterID.String()
	}
	return map[string]string{
		"mrfId":         p.MRFID,
		"mrfTitle":      p.MRFTitle,
		"poNumber":      p.PONumber,
		"grnId":         p.GRNID,
		"amount":        p.Amount.String(),
		"reason":        p.Reason,
		"vendor":        p.Vendor,
		"requesterId":   requesterID,
		"requesterName": p.RequesterName,
		"department":    p.Department,
		"actorName":     p.ActorName,
		"urgency":       p.Urgency,
		"stage":         p.Stage,
	}
}
