// Package authgate holds the caller-authentication predicates guarding every
// externally reachable bridge transition. Each failing predicate produces a
// distinct named error so integrators can tell "not authorized" from "wrong
// nonce" from "paused".
package authgate

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/messenger"
)

var (
	// ErrNotEOA is returned when a contract calls an EOA-only entry point.
	ErrNotEOA = errors.New("caller is not an externally-owned account")
	// ErrNotMessenger is returned when a finalize entry is called by anything
	// other than the transport.
	ErrNotMessenger = errors.New("caller is not the messenger")
	// ErrNotPairedBridge is returned when the relayed message did not
	// originate from the registered paired bridge.
	ErrNotPairedBridge = errors.New("message does not originate from the paired bridge")
	// ErrPaused is returned when a fund-moving entry is called while paused.
	ErrPaused = errors.New("bridge is paused")
	// ErrNonceMismatch is returned when a fast-withdrawal nonce does not
	// equal the sender's current counter.
	ErrNonceMismatch = errors.New("nonce does not match current counter")
)

// CodeChecker reports whether an address has contract code. *chain.Chain
// satisfies it.
type CodeChecker interface {
	IsContract(addr common.Address) bool
}

// RequireEOA fails unless caller has no contract code.
func RequireEOA(c CodeChecker, caller common.Address) error {
	if c.IsContract(caller) {
		return fmt.Errorf("%w: %s", ErrNotEOA, caller.Hex())
	}
	return nil
}

// RequirePairedBridge fails unless caller is the transport itself and the
// transport reports the cross-domain sender as the registered paired bridge.
func RequirePairedBridge(m messenger.Messenger, caller, otherBridge common.Address) error {
	if caller != m.Address() {
		return fmt.Errorf("%w: %s", ErrNotMessenger, caller.Hex())
	}
	sender, err := m.XDomainSender()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotPairedBridge, err)
	}
	if sender != otherBridge {
		return fmt.Errorf("%w: got %s, want %s", ErrNotPairedBridge, sender.Hex(), otherBridge.Hex())
	}
	return nil
}

// RequireNonce fails unless got equals expected. Fast-withdrawal nonces are
// strictly sequential: no gaps, no reuse, no out-of-order acceptance.
func RequireNonce(expected, got uint64) error {
	if got != expected {
		return fmt.Errorf("%w: got %d, current %d", ErrNonceMismatch, got, expected)
	}
	return nil
}
