package paymongo

import (
	"encoding/json"
	"errors"
)

// ErrMalformedEvent means no usable reference identifier could be extracted.
// The webhook handler answers 400 so PayMongo stops retrying the delivery.
var ErrMalformedEvent = errors.New("malformed payment event")

type Outcome string

const (
	OutcomePaid     Outcome = "paid"
	OutcomeFailed   Outcome = "failed"
	OutcomeRefunded Outcome = "refunded"
	OutcomeUnknown  Outcome = "unknown"
)

// PaymentEvent is the canonical form of one webhook delivery, whatever
// payload shape the provider chose this time.
type PaymentEvent struct {
	Type        string
	ReferenceID string
	Outcome     Outcome
	// RawStatus carries the provider's verbatim status when Type is not in
	// the known table; it is what Outcome was derived from in that case.
	RawStatus string
}

// PayMongo has shipped at least three shapes for logically equivalent
// events: session-level, payment-level and payment-intent-nested. Every
// optional field of all shapes is declared here and the extraction below is
// an ordered list of lookups, so shape number four is a one-line addition.
type Envelope struct {
	Type string `json:"type"`
	Data struct {
		ID         string     `json:"id"`
		Type       string     `json:"type"`
		Attributes attributes `json:"attributes"`
	} `json:"data"`
}

type attributes struct {
	Type string   `json:"type"`
	Data resource `json:"data"`

	// present when the event body is the resource itself
	ReferenceNumber   string        `json:"reference_number"`
	CheckoutSessionID string        `json:"checkout_session_id"`
	Status            string        `json:"status"`
	PaymentIntent     paymentIntent `json:"payment_intent"`
}

type resource struct {
	ID         string `json:"id"`
	Attributes struct {
		ReferenceNumber   string        `json:"reference_number"`
		CheckoutSessionID string        `json:"checkout_session_id"`
		Status            string        `json:"status"`
		PaymentIntent     paymentIntent `json:"payment_intent"`
	} `json:"attributes"`
}

type paymentIntent struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Attributes struct {
		Status string `json:"status"`
	} `json:"attributes"`
}

// referenceLookups, in priority order: reference number, checkout session id,
// nested payload id, top-level event data id. First non-empty wins.
var referenceLookups = []func(*Envelope) string{
	func(e *Envelope) string {
		if v := e.Data.Attributes.Data.Attributes.ReferenceNumber; v != "" {
			return v
		}
		return e.Data.Attributes.ReferenceNumber
	},
	func(e *Envelope) string {
		if v := e.Data.Attributes.Data.Attributes.CheckoutSessionID; v != "" {
			return v
		}
		return e.Data.Attributes.CheckoutSessionID
	},
	func(e *Envelope) string { return e.Data.Attributes.Data.ID },
	func(e *Envelope) string { return e.Data.ID },
}

var outcomeByType = map[string]Outcome{
	"checkout_session.payment.paid": OutcomePaid,
	"payment.paid":                  OutcomePaid,
	"payment.failed":                OutcomeFailed,
	"payment.refunded":              OutcomeRefunded,
	"payment.refund.updated":        OutcomeRefunded,
}

// ParseEvent normalizes a raw webhook body into a PaymentEvent.
func ParseEvent(body []byte) (PaymentEvent, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return PaymentEvent{}, ErrMalformedEvent
	}
	return NormalizeEnvelope(&env)
}

func NormalizeEnvelope(env *Envelope) (PaymentEvent, error) {
	evt := PaymentEvent{Type: eventType(env)}

	for _, lookup := range referenceLookups {
		if ref := lookup(env); ref != "" {
			evt.ReferenceID = ref
			break
		}
	}
	if evt.ReferenceID == "" {
		return PaymentEvent{}, ErrMalformedEvent
	}

	if out, ok := outcomeByType[evt.Type]; ok {
		evt.Outcome = out
		return evt, nil
	}

	// Unrecognized type tag: fall back to the nested payment-intent status.
	evt.RawStatus = intentStatus(env)
	switch evt.RawStatus {
	case "succeeded":
		evt.Outcome = OutcomePaid
	case "":
		evt.Outcome = OutcomeUnknown
	default:
		evt.Outcome = Outcome(evt.RawStatus)
	}
	return evt, nil
}

func eventType(env *Envelope) string {
	if env.Data.Attributes.Type != "" {
		return env.Data.Attributes.Type
	}
	return env.Type
}

func intentStatus(env *Envelope) string {
	pi := env.Data.Attributes.Data.Attributes.PaymentIntent
	if pi.Attributes.Status == "" && pi.Status == "" {
		pi = env.Data.Attributes.PaymentIntent
	}
	if pi.Attributes.Status != "" {
		return pi.Attributes.Status
	}
	return pi.Status
}
