package schedule

import "github.com/ethereum/go-ethereum/common"

// SetReceiver replaces the receiver of future releases. Only the owner can
// call this.
func (s *Schedule) SetReceiver(caller common.Address, receiver common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownership.authorize(caller); err != nil {
		return err
	}

	if receiver == (common.Address{}) {
		return ErrInvalidAddress
	}

	s.receiver = receiver
	s.emit(ReceiverSet{Receiver: receiver})

	return nil
}

// TransferOwnership hands the owner role to a new address. Only the owner can
// call this.
func (s *Schedule) TransferOwnership(caller common.Address, newOwner common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownership.authorize(caller); err != nil {
		return err
	}

	if newOwner == (common.Address{}) {
		return ErrInvalidAddress
	}

	s.ownership = owned(newOwner)
	s.emit(OwnershipTransferred{PreviousOwner: caller, NewOwner: newOwner})

	return nil
}

// RenounceOwnership leaves the schedule without an owner. Every owner gated
// operation fails from then on.
func (s *Schedule) RenounceOwnership(caller common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ownership.authorize(caller); err != nil {
		return err
	}

	s.ownership = renounced{}
	s.emit(OwnershipTransferred{PreviousOwner: caller})

	return nil
}
