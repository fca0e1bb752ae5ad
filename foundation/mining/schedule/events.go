package schedule

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Names of the events emitted by a schedule.
const (
	EventWithdrawal           = "Withdrawal"
	EventReceiverSet          = "ReceiverSet"
	EventOwnershipTransferred = "OwnershipTransferred"
)

// Event represents something that happened to a schedule.
type Event interface {
	EventName() string
}

// EventSink receives events in the order the schedule commits them. Emit is
// called while the schedule is locked, so a sink must not call back into the
// schedule that emitted the event.
type EventSink interface {
	Emit(ev Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ev Event)

// Emit calls f(ev).
func (f EventSinkFunc) Emit(ev Event) {
	f(ev)
}

// =============================================================================

// Withdrawal is emitted for every successful release.
type Withdrawal struct {
	To     common.Address
	Amount *uint256.Int
}

// EventName implements the Event interface.
func (Withdrawal) EventName() string {
	return EventWithdrawal
}

// ReceiverSet is emitted when the owner changes the receiver.
type ReceiverSet struct {
	Receiver common.Address
}

// EventName implements the Event interface.
func (ReceiverSet) EventName() string {
	return EventReceiverSet
}

// OwnershipTransferred is emitted when ownership moves to a new owner or is
// renounced, in which case NewOwner is the zero address.
type OwnershipTransferred struct {
	PreviousOwner common.Address
	NewOwner      common.Address
}

// EventName implements the Event interface.
func (OwnershipTransferred) EventName() string {
	return EventOwnershipTransferred
}
