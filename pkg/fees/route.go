package fees

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/standard-bridge/pkg/chain"
	"github.com/chainsafe/standard-bridge/pkg/journal"
	"github.com/chainsafe/standard-bridge/pkg/token"
)

// PoolReceiver is the liquidity-pool surface fee routing needs.
type PoolReceiver interface {
	Address() common.Address
}

// Route pays the flat portion to the flat-fee recipient and the proportional
// portion to the liquidity pool, both drawn from the bridge's own custody
// address. A nil tok routes the proportional portion in native currency;
// otherwise it is paid in token units. Each leg failing surfaces its own
// error so operators can tell which transfer broke.
func (e *Engine) Route(j *journal.Journal, ch *chain.Chain, custodian common.Address, pool PoolReceiver, s Schedule, tok token.ERC20) error {
	if s.Flat != nil && s.Flat.Sign() > 0 {
		if err := ch.Transfer(j, custodian, e.FlatFeeRecipient(), s.Flat); err != nil {
			return fmt.Errorf("%w: %v", ErrFlatFeeLeg, err)
		}
	}
	if s.Proportional == nil || s.Proportional.Sign() == 0 {
		return nil
	}
	if tok == nil {
		if err := ch.Transfer(j, custodian, pool.Address(), s.Proportional); err != nil {
			return fmt.Errorf("%w: %v", ErrPoolFeeLeg, err)
		}
		return nil
	}
	if _, err := tok.Transfer(j, custodian, pool.Address(), s.Proportional); err != nil {
		return fmt.Errorf("%w: %v", ErrPoolFeeLeg, err)
	}
	return nil
}

// RequireSupersonicFee checks the dedicated fast-withdrawal fee.
func RequireSupersonicFee(attached, required *big.Int) error {
	if required == nil || required.Sign() == 0 {
		return nil
	}
	if attached == nil || attached.Cmp(required) < 0 {
		return fmt.Errorf("%w: attached %s, supersonic fee %s", ErrInsufficientFee, attached, required)
	}
	return nil
}
