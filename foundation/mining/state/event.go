package state

import (
	"fmt"

	"github.com/ardanlabs/mining/foundation/mining/schedule"
)

// EventMessage is the published form of a contract event.
type EventMessage struct {
	Contract      string `json:"contract"`
	Event         string `json:"event"`
	Tick          uint64 `json:"tick"`
	To            string `json:"to,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Receiver      string `json:"receiver,omitempty"`
	PreviousOwner string `json:"previous_owner,omitempty"`
	NewOwner      string `json:"new_owner,omitempty"`
}

func newEventMessage(contract string, tick uint64, ev schedule.Event) EventMessage {
	msg := EventMessage{
		Contract: contract,
		Event:    ev.EventName(),
		Tick:     tick,
	}

	switch ev := ev.(type) {
	case schedule.Withdrawal:
		msg.To = ev.To.Hex()
		msg.Amount = ev.Amount.Dec()
	case schedule.ReceiverSet:
		msg.Receiver = ev.Receiver.Hex()
	case schedule.OwnershipTransferred:
		msg.PreviousOwner = ev.PreviousOwner.Hex()
		msg.NewOwner = ev.NewOwner.Hex()
	}

	return msg
}

// String implements the fmt.Stringer interface for logging.
func (msg EventMessage) String() string {
	switch msg.Event {
	case schedule.EventWithdrawal:
		return fmt.Sprintf("to[%s] amount[%s]", msg.To, msg.Amount)
	case schedule.EventReceiverSet:
		return fmt.Sprintf("receiver[%s]", msg.Receiver)
	case schedule.EventOwnershipTransferred:
		return fmt.Sprintf("previous[%s] new[%s]", msg.PreviousOwner, msg.NewOwner)
	}
	return msg.Event
}
