// Package fees computes and routes bridging fees. Every transfer pays a flat
// fee in native currency covering relay overhead, plus a proportional fee on
// the transferred value covering liquidity risk. The proportional formula is
// selected by protocol version so legacy and current behavior stay testable
// side by side.
package fees

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// FeeDenominator is the fixed denominator of the proportional bridging fee.
const FeeDenominator = 1000

// MaxFlatFee is the ceiling on the configurable flat fee, 0.005 native units.
var MaxFlatFee = new(big.Int).Mul(big.NewInt(5), new(big.Int).Exp(big.NewInt(10), big.NewInt(15), nil))

// ProtocolVersion selects the fee-calculation strategy.
type ProtocolVersion int

const (
	// V1 levies the proportional fee over the full attached value.
	V1 ProtocolVersion = iota + 1
	// V2 takes the flat fee first and levies the proportional fee over the
	// remainder.
	V2
)

var (
	// ErrInsufficientFee is returned when the attached native value does not
	// cover the required fee.
	ErrInsufficientFee = errors.New("attached value does not cover the fee")
	// ErrFeeTooHigh is returned by setters exceeding the configured ceiling.
	ErrFeeTooHigh = errors.New("fee exceeds ceiling")
	// ErrFlatFeeLeg wraps a failure paying the flat portion to the recipient.
	ErrFlatFeeLeg = errors.New("flat fee transfer failed")
	// ErrPoolFeeLeg wraps a failure paying the proportional portion to the pool.
	ErrPoolFeeLeg = errors.New("pool fee transfer failed")
)

// Config is the mutable fee configuration of one bridge instance.
type Config struct {
	// FlatFee is the absolute per-transfer charge in native currency.
	FlatFee *big.Int
	// BridgingFeeNumerator is the proportional fee numerator over FeeDenominator.
	BridgingFeeNumerator uint64
	// FlatFeeRecipient receives the flat portion.
	FlatFeeRecipient common.Address
	// Exempt lists assets that pay no proportional fee.
	Exempt map[common.Address]bool
	// CapInclusive selects <= (true) or < (false) for the flat-fee ceiling.
	CapInclusive bool
}

// Schedule is the fee breakdown of one transfer.
type Schedule struct {
	// Flat is the native-currency portion paid to the flat-fee recipient.
	Flat *big.Int
	// Proportional is the portion paid to the liquidity pool. For native
	// deposits it is native currency; for token deposits it is token units.
	Proportional *big.Int
	// Principal is the amount actually bridged.
	Principal *big.Int
}

// Engine computes fee schedules against the current configuration.
type Engine struct {
	mu      sync.RWMutex
	cfg     Config
	version ProtocolVersion
}

// NewEngine creates an engine. A nil flat fee is treated as zero.
func NewEngine(cfg Config, version ProtocolVersion) *Engine {
	if cfg.FlatFee == nil {
		cfg.FlatFee = new(big.Int)
	}
	if cfg.Exempt == nil {
		cfg.Exempt = make(map[common.Address]bool)
	}
	return &Engine{cfg: cfg, version: version}
}

// Version returns the active protocol version.
func (e *Engine) Version() ProtocolVersion {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// FlatFee returns a copy of the current flat fee.
func (e *Engine) FlatFee() *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return new(big.Int).Set(e.cfg.FlatFee)
}

// FlatFeeRecipient returns the current flat-fee recipient.
func (e *Engine) FlatFeeRecipient() common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.FlatFeeRecipient
}

// BridgingFeeNumerator returns the current proportional numerator.
func (e *Engine) BridgingFeeNumerator() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.BridgingFeeNumerator
}

// IsExempt reports whether the asset pays no proportional fee.
func (e *Engine) IsExempt(asset common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Exempt[asset]
}

// proportionalOver computes floor(base * numerator / FeeDenominator).
// Callers must hold e.mu.
func (e *Engine) proportionalOver(base *big.Int) *big.Int {
	p := new(big.Int).Mul(base, new(big.Int).SetUint64(e.cfg.BridgingFeeNumerator))
	return p.Div(p, big.NewInt(FeeDenominator))
}

// NativeDeposit computes the schedule for a native-currency deposit of the
// given attached value. The attached value must at least cover the flat fee;
// everything above the fees becomes the bridged principal.
func (e *Engine) NativeDeposit(value *big.Int) (Schedule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if value == nil || value.Cmp(e.cfg.FlatFee) < 0 {
		return Schedule{}, fmt.Errorf("%w: attached %s, flat fee %s", ErrInsufficientFee, value, e.cfg.FlatFee)
	}
	remainder := new(big.Int).Sub(value, e.cfg.FlatFee)

	var proportional *big.Int
	switch e.version {
	case V1:
		proportional = e.proportionalOver(value)
	default:
		proportional = e.proportionalOver(remainder)
	}
	if proportional.Cmp(remainder) > 0 {
		return Schedule{}, fmt.Errorf("%w: proportional fee %s exceeds remainder %s", ErrInsufficientFee, proportional, remainder)
	}

	return Schedule{
		Flat:         new(big.Int).Set(e.cfg.FlatFee),
		Proportional: proportional,
		Principal:    new(big.Int).Sub(remainder, proportional),
	}, nil
}

// TokenDeposit computes the schedule for a fungible token deposit. The
// attached native value must equal the flat fee exactly; the proportional fee
// is deducted from the token amount unless the asset is exempt.
func (e *Engine) TokenDeposit(value, amount *big.Int, asset common.Address) (Schedule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if value == nil || value.Cmp(e.cfg.FlatFee) != 0 {
		return Schedule{}, fmt.Errorf("%w: attached %s, flat fee %s", ErrInsufficientFee, value, e.cfg.FlatFee)
	}

	proportional := new(big.Int)
	if !e.cfg.Exempt[asset] {
		proportional = e.proportionalOver(amount)
	}
	if proportional.Cmp(amount) > 0 {
		return Schedule{}, fmt.Errorf("%w: proportional fee %s exceeds amount %s", ErrInsufficientFee, proportional, amount)
	}

	return Schedule{
		Flat:         new(big.Int).Set(e.cfg.FlatFee),
		Proportional: proportional,
		Principal:    new(big.Int).Sub(amount, proportional),
	}, nil
}

// SetFlatFee replaces the flat fee, enforcing the ceiling. Returns the
// previous and new values for audit logging.
func (e *Engine) SetFlatFee(fee *big.Int) (prev, cur *big.Int, err error) {
	if fee == nil || fee.Sign() < 0 {
		return nil, nil, fmt.Errorf("%w: negative", ErrFeeTooHigh)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	cmp := fee.Cmp(MaxFlatFee)
	if cmp > 0 || (cmp == 0 && !e.cfg.CapInclusive) {
		return nil, nil, fmt.Errorf("%w: %s, ceiling %s", ErrFeeTooHigh, fee, MaxFlatFee)
	}
	prev = e.cfg.FlatFee
	e.cfg.FlatFee = new(big.Int).Set(fee)
	return prev, new(big.Int).Set(fee), nil
}

// SetBridgingFee replaces the proportional numerator. The numerator can never
// reach the denominator. Returns the previous and new values.
func (e *Engine) SetBridgingFee(numerator uint64) (prev, cur uint64, err error) {
	if numerator >= FeeDenominator {
		return 0, 0, fmt.Errorf("%w: %d/%d", ErrFeeTooHigh, numerator, FeeDenominator)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	prev = e.cfg.BridgingFeeNumerator
	e.cfg.BridgingFeeNumerator = numerator
	return prev, numerator, nil
}

// SetFlatFeeRecipient replaces the flat-fee recipient. Returns the previous
// and new values.
func (e *Engine) SetFlatFeeRecipient(recipient common.Address) (prev, cur common.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev = e.cfg.FlatFeeRecipient
	e.cfg.FlatFeeRecipient = recipient
	return prev, recipient
}

// SetExempt marks or clears the proportional-fee exemption for an asset.
func (e *Engine) SetExempt(asset common.Address, exempt bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.Exempt[asset] = exempt
}
