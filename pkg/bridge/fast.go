package bridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/authgate"
	"github.com/chainsafe/standard-bridge/pkg/fees"
	"github.com/chainsafe/standard-bridge/pkg/journal"
)

// CreditFastBridge marks funds available for a beneficiary after off-chain
// verification. Pure trust in the admin key: no cryptographic proof is
// checked. The credit is a claim on the pool, not a hold of specific funds.
func (b *Bridge) CreditFastBridge(caller, beneficiary, tokenAddr common.Address, amount *big.Int) error {
	if err := b.roles.RequireAdmin(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireNotPaused(); err != nil {
		return err
	}
	key := creditKey{beneficiary, tokenAddr}
	cur, ok := b.credits[key]
	if !ok {
		cur = new(big.Int)
		b.credits[key] = cur
	}
	cur.Add(cur, amount)
	return nil
}

// ClaimFastBridge is the beneficiary's pull-withdrawal: it decrements the
// credit and pays out of the pool. The pool is trusted to be funded; an
// underfunded pool fails the payout and the credit decrement unwinds.
func (b *Bridge) ClaimFastBridge(caller, tokenAddr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireNotPaused(); err != nil {
		return err
	}
	key := creditKey{caller, tokenAddr}
	cur, ok := b.credits[key]
	if !ok || cur.Cmp(amount) < 0 {
		return fmt.Errorf("%w: credited %s, requested %s", ErrInsufficientCredit, cur, amount)
	}

	j := journal.New()
	cur.Sub(cur, amount)
	amt := new(big.Int).Set(amount)
	j.Record(func() { cur.Add(cur, amt) })

	if err := b.payFromPool(j, tokenAddr, caller, amount); err != nil {
		j.Revert()
		return err
	}
	j.Discard()
	return nil
}

// FastWithdraw settles a backend-signed withdrawal immediately, bypassing the
// message relay. The signature is verified against the registered backend
// under the deployment domain, the nonce must equal the initiator's current
// counter exactly, the supersonic fee must be attached, and the proof payload
// is pushed to the proving pipeline before funds move. Any failing check
// aborts before any state change.
func (b *Bridge) FastWithdraw(caller common.Address, req authgate.FastWithdrawalRequest, sig []byte, attachedFee *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.requireNotPaused(); err != nil {
		return err
	}
	if err := fees.RequireSupersonicFee(attachedFee, b.supersonicFee); err != nil {
		return err
	}
	if err := authgate.VerifyBackendSignature(b.domain, req, sig, b.backend); err != nil {
		return err
	}
	// Nonces are keyed by the initiator, not the beneficiary.
	if err := authgate.RequireNonce(b.nonces[req.From], req.Nonce); err != nil {
		return err
	}
	if err := b.validDestination(req.To); err != nil {
		return err
	}

	j := journal.New()
	if err := b.settleFast(j, caller, req, attachedFee); err != nil {
		j.Revert()
		return err
	}
	j.Discard()

	b.nonces[req.From]++
	b.hooks.OnFastWithdrawal(FastEvent{
		Chain:       b.chain.Name(),
		Initiator:   req.From,
		Beneficiary: req.To,
		Token:       req.LocalAsset,
		Amount:      req.Amount,
		Fee:         attachedFee,
		Nonce:       req.Nonce,
	})
	return nil
}

func (b *Bridge) settleFast(j *journal.Journal, caller common.Address, req authgate.FastWithdrawalRequest, attachedFee *big.Int) error {
	// Supersonic fee goes to the flat-fee recipient.
	if attachedFee != nil && attachedFee.Sign() > 0 {
		if err := b.chain.Transfer(j, caller, b.fees.FlatFeeRecipient(), attachedFee); err != nil {
			return fmt.Errorf("%w: %v", fees.ErrFlatFeeLeg, err)
		}
	}
	if err := b.payFromPool(j, req.LocalAsset, req.To, req.Amount); err != nil {
		return err
	}
	return b.proofs.Push(req.BlockReference, req.ProofPayload)
}

// payFromPool pays native currency or token units out of the pool under the
// bridge's own role.
func (b *Bridge) payFromPool(j *journal.Journal, tokenAddr, to common.Address, amount *big.Int) error {
	if tokenAddr == (common.Address{}) {
		return b.pool.SendNative(j, b.addr, to, amount)
	}
	tok, err := b.resolveToken(tokenAddr)
	if err != nil {
		return err
	}
	return b.pool.SendERC20(j, b.addr, tok, to, amount)
}
