// Package schedule implements the mining contract: a custodied balance that is
// released to a receiver once per withdraw interval, with the released amount
// decaying over consecutive releases down to a floor.
package schedule

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Clock provides the current tick. In a chain this is the block height and is
// expected never to move backwards.
type Clock interface {
	CurrentTick() uint64
}

// ValueTransfer moves value out of the schedule to the specified recipient.
// Send must either complete fully or fail with no effect.
type ValueTransfer interface {
	Send(to common.Address, amount *uint256.Int) error
}

// =============================================================================

// Gate defines who is allowed to trigger a withdraw.
type Gate uint8

// Set of supported gates.
const (
	GatePermissionless Gate = iota
	GateOwner
)

// String implements the Stringer interface.
func (g Gate) String() string {
	switch g {
	case GatePermissionless:
		return "permissionless"
	case GateOwner:
		return "owner"
	}
	return fmt.Sprintf("gate(%d)", uint8(g))
}

// ParseGate converts the string form of a gate back into a Gate.
func ParseGate(s string) (Gate, error) {
	switch strings.ToLower(s) {
	case "permissionless", "":
		return GatePermissionless, nil
	case "owner":
		return GateOwner, nil
	}
	return 0, fmt.Errorf("%w: unknown gate %q", ErrInvalidConfig, s)
}

// Decay defines how the withdraw amount shrinks. After every ResetThreshold
// releases the amount becomes amount * Numerator / Denominator, never going
// below MinWithdrawAmount.
type Decay struct {
	MinWithdrawAmount *uint256.Int
	Numerator         uint64
	Denominator       uint64
	ResetThreshold    uint64
}

// next calculates the amount that follows a reset.
func (d Decay) next(amount *uint256.Int) *uint256.Int {

	// The numerator is never larger than the denominator so the quotient
	// can't overflow.
	next, _ := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(d.Numerator), uint256.NewInt(d.Denominator))
	if next.Lt(d.MinWithdrawAmount) {
		return d.MinWithdrawAmount.Clone()
	}

	return next
}

// clone returns a deep copy of the decay.
func (d Decay) clone() Decay {
	d.MinWithdrawAmount = d.MinWithdrawAmount.Clone()
	return d
}

// =============================================================================

// ownership is either owned by an address or renounced. There is no way back
// from renounced.
type ownership interface {
	authorize(caller common.Address) error
}

type owned common.Address

func (o owned) authorize(caller common.Address) error {
	if common.Address(o) != caller {
		return ErrUnauthorized
	}
	return nil
}

type renounced struct{}

func (renounced) authorize(common.Address) error {
	return ErrUnauthorized
}

// =============================================================================

// Config represents the fixed parameters of a schedule and the collaborators
// it depends on. Decay is nil for a schedule whose amount never changes.
type Config struct {
	Owner            common.Address
	WithdrawInterval uint64
	WithdrawAmount   *uint256.Int
	Decay            *Decay
	Gate             Gate
	Clock            Clock
	Transfer         ValueTransfer
	Sink             EventSink
}

// validate checks the fixed parameters.
func (cfg Config) validate() error {
	if cfg.Clock == nil || cfg.Transfer == nil {
		return fmt.Errorf("%w: clock and transfer are required", ErrInvalidConfig)
	}

	if cfg.WithdrawInterval == 0 {
		return fmt.Errorf("%w: withdraw interval must be positive", ErrInvalidConfig)
	}

	if cfg.WithdrawAmount == nil {
		return fmt.Errorf("%w: withdraw amount is required", ErrInvalidConfig)
	}

	if cfg.Gate != GatePermissionless && cfg.Gate != GateOwner {
		return fmt.Errorf("%w: unknown gate %d", ErrInvalidConfig, cfg.Gate)
	}

	if d := cfg.Decay; d != nil {
		switch {
		case d.MinWithdrawAmount == nil:
			return fmt.Errorf("%w: min withdraw amount is required", ErrInvalidConfig)
		case d.Denominator == 0:
			return fmt.Errorf("%w: decay denominator must be positive", ErrInvalidConfig)
		case d.Numerator > d.Denominator:
			return fmt.Errorf("%w: decay ratio %d/%d is above one", ErrInvalidConfig, d.Numerator, d.Denominator)
		case d.ResetThreshold == 0:
			return fmt.Errorf("%w: reset threshold must be positive", ErrInvalidConfig)
		case cfg.WithdrawAmount.Lt(d.MinWithdrawAmount):
			return fmt.Errorf("%w: withdraw amount %s below min %s", ErrInvalidConfig, cfg.WithdrawAmount.Dec(), d.MinWithdrawAmount.Dec())
		}
	}

	return nil
}

// Schedule manages the custodied balance and the rules for releasing it.
// All operations are serialized behind a single mutex.
type Schedule struct {
	mu sync.Mutex

	clock    Clock
	transfer ValueTransfer
	sink     EventSink
	gate     Gate
	decay    *Decay
	interval uint64

	ownership        ownership
	receiver         common.Address
	balance          *uint256.Int
	lastWithdrawTick uint64
	withdrawAmount   *uint256.Int
	withdrawCounter  uint64
}

// New constructs a schedule owned by cfg.Owner. The receiver starts as the
// owner and the last withdraw tick starts as the current tick.
func New(cfg Config) (*Schedule, error) {
	if cfg.Owner == (common.Address{}) {
		return nil, ErrInvalidAddress
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := newSchedule(cfg)
	s.ownership = owned(cfg.Owner)
	s.receiver = cfg.Owner
	s.balance = new(uint256.Int)
	s.lastWithdrawTick = cfg.Clock.CurrentTick()
	s.withdrawAmount = cfg.WithdrawAmount.Clone()

	return s, nil
}

// Restore rebuilds a schedule from the fixed parameters in cfg and the mutable
// state captured in a snapshot. cfg.Owner is ignored in favor of the snapshot.
func Restore(cfg Config, snap Snapshot) (*Schedule, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := snap.validate(cfg); err != nil {
		return nil, err
	}

	s := newSchedule(cfg)
	s.ownership = owned(snap.Owner)
	if snap.Renounced {
		s.ownership = renounced{}
	}
	s.receiver = snap.Receiver
	s.balance = snap.Balance.Clone()
	s.lastWithdrawTick = snap.LastWithdrawTick
	s.withdrawAmount = snap.WithdrawAmount.Clone()
	s.withdrawCounter = snap.WithdrawCounter

	return s, nil
}

// newSchedule sets the fields that come from the fixed configuration.
func newSchedule(cfg Config) *Schedule {
	s := Schedule{
		clock:    cfg.Clock,
		transfer: cfg.Transfer,
		sink:     cfg.Sink,
		gate:     cfg.Gate,
		interval: cfg.WithdrawInterval,
	}

	if cfg.Decay != nil {
		d := cfg.Decay.clone()
		s.decay = &d
	}

	return &s
}

// emit sends the event to the sink if one is configured.
func (s *Schedule) emit(ev Event) {
	if s.sink != nil {
		s.sink.Emit(ev)
	}
}
