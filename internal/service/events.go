package service

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"
)

const (
	SubjectBookingApplied    = "ledger.booking.applied"
	SubjectWithdrawalApplied = "ledger.withdrawal.applied"
	SubjectAdjustmentApplied = "ledger.adjustment.applied"
	SubjectLedgerReset       = "ledger.reset"
	SubjectLedgerRebuilt     = "ledger.rebuilt"
)

// EventPublisher pushes applied ledger events to NATS for downstream
// consumers (reporting, notifications). A nil publisher is a no-op, so the
// service runs fine without a broker configured.
type EventPublisher struct {
	nc *nats.Conn
}

func NewEventPublisher(url string) (*EventPublisher, error) {
	if url == "" {
		return nil, nil
	}
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &EventPublisher{nc: nc}, nil
}

func (p *EventPublisher) Publish(subject string, payload interface{}) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[events] marshal %s: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Printf("[events] publish %s: %v", subject, err)
	}
}

func (p *EventPublisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Close()
}
