package bridge

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Pause gates all fund-moving entry points, effective for the very next call.
// Pauser or admin only.
func (b *Bridge) Pause(caller common.Address) error {
	if err := b.roles.RequirePauserOrAdmin(caller); err != nil {
		return err
	}
	b.mu.Lock()
	b.paused = true
	b.mu.Unlock()
	b.hooks.OnPauseChanged(b.chain.Name(), true)
	return nil
}

// Unpause re-enables fund-moving entry points. Pauser or admin only.
func (b *Bridge) Unpause(caller common.Address) error {
	if err := b.roles.RequirePauserOrAdmin(caller); err != nil {
		return err
	}
	b.mu.Lock()
	b.paused = false
	b.mu.Unlock()
	b.hooks.OnPauseChanged(b.chain.Name(), false)
	return nil
}

// SetFlatFee replaces the flat fee. Admin only; returns the previous and new
// values for audit logging.
func (b *Bridge) SetFlatFee(caller common.Address, fee *big.Int) (prev, cur *big.Int, err error) {
	if err := b.roles.RequireAdmin(caller); err != nil {
		return nil, nil, err
	}
	return b.fees.SetFlatFee(fee)
}

// SetBridgingFee replaces the proportional fee numerator. Admin only.
func (b *Bridge) SetBridgingFee(caller common.Address, numerator uint64) (prev, cur uint64, err error) {
	if err := b.roles.RequireAdmin(caller); err != nil {
		return 0, 0, err
	}
	return b.fees.SetBridgingFee(numerator)
}

// SetFlatFeeRecipient replaces the flat-fee recipient. Admin only.
func (b *Bridge) SetFlatFeeRecipient(caller, recipient common.Address) (prev, cur common.Address, err error) {
	if err := b.roles.RequireAdmin(caller); err != nil {
		return common.Address{}, common.Address{}, err
	}
	prev, cur = b.fees.SetFlatFeeRecipient(recipient)
	return prev, cur, nil
}

// SetFeeExempt marks or clears an asset's proportional-fee exemption. Admin
// only.
func (b *Bridge) SetFeeExempt(caller, asset common.Address, exempt bool) error {
	if err := b.roles.RequireAdmin(caller); err != nil {
		return err
	}
	b.fees.SetExempt(asset, exempt)
	return nil
}

// SetBackend registers the fast-withdrawal signer. Admin only; returns the
// previous and new values.
func (b *Bridge) SetBackend(caller, backend common.Address) (prev, cur common.Address, err error) {
	if err := b.roles.RequireAdmin(caller); err != nil {
		return common.Address{}, common.Address{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	prev = b.backend
	b.backend = backend
	return prev, backend, nil
}

// SetSupersonicFee replaces the fast-withdrawal fee. Admin only; returns the
// previous and new values.
func (b *Bridge) SetSupersonicFee(caller common.Address, fee *big.Int) (prev, cur *big.Int, err error) {
	if err := b.roles.RequireAdmin(caller); err != nil {
		return nil, nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	prev = b.supersonicFee
	b.supersonicFee = new(big.Int).Set(fee)
	return prev, new(big.Int).Set(fee), nil
}
