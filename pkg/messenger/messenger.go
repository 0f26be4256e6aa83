// Package messenger defines the asynchronous cross-domain transport boundary.
// The bridge core consumes it as an abstract "deliver an authenticated message
// from the paired contract" capability; anti-spoofing and at-most-once
// delivery are the transport's contract, not re-implemented here.
package messenger

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Kind distinguishes the finalize entry point a message targets.
type Kind uint8

const (
	// KindFinalizeFungible targets the fungible bridge's finalize entry.
	KindFinalizeFungible Kind = iota + 1
	// KindFinalizeNFT targets the NFT bridge's finalize entry.
	KindFinalizeNFT
)

// ErrNotRelaying is returned by XDomainSender outside of message delivery.
var ErrNotRelaying = errors.New("no cross-domain message is executing")

// Message is the wire shape relayed between the paired bridges. Asset order
// is already swapped by the sender: LocalAsset is local from the receiving
// side's perspective. Nonce is assigned by the sending endpoint and is unique
// and monotonic per queue; it identifies the message across redelivery.
type Message struct {
	Target      common.Address
	Sender      common.Address
	Nonce       uint64
	Kind        Kind
	LocalAsset  common.Address
	RemoteAsset common.Address
	From        common.Address
	To          common.Address
	Amount      *big.Int
	TokenID     *big.Int
	MinGasLimit uint64
	ExtraData   []byte
}

// Handler is a finalize entry point on the receiving side.
type Handler interface {
	HandleMessage(msg Message) error
}

// Messenger is the transport surface a bridge instance sees.
type Messenger interface {
	// Address is the transport's own address on this chain. Finalize rejects
	// it as a funds destination.
	Address() common.Address
	// SendMessage enqueues a message for the paired chain.
	SendMessage(sender common.Address, msg Message) error
	// XDomainSender reports the originating contract of the message currently
	// being delivered. Valid only during delivery.
	XDomainSender() (common.Address, error)
}

// Queue is an in-process transport endpoint: an ordered outbox of messages
// sent from this side, and a delivery context for messages arriving from the
// paired side. Delivery pops are at-most-once; ordering across asset pairs is
// not guaranteed to survive the relayer.
type Queue struct {
	addr common.Address

	mu       sync.Mutex
	seq      uint64
	outbox   []Message
	relaying bool
	xSender  common.Address
}

// NewQueue creates a transport endpoint at the given address.
func NewQueue(addr common.Address) *Queue {
	return &Queue{addr: addr}
}

// Address returns the endpoint's address.
func (q *Queue) Address() common.Address { return q.addr }

// SendMessage appends the message to the outbox, stamping the sender and the
// next message nonce.
func (q *Queue) SendMessage(sender common.Address, msg Message) error {
	msg.Sender = sender
	q.mu.Lock()
	defer q.mu.Unlock()
	msg.Nonce = q.seq
	q.seq++
	q.outbox = append(q.outbox, msg)
	return nil
}

// Dequeue pops the oldest outbound message.
func (q *Queue) Dequeue() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.outbox) == 0 {
		return Message{}, false
	}
	msg := q.outbox[0]
	q.outbox = q.outbox[1:]
	return msg, true
}

// Pending returns the outbox depth.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.outbox)
}

// Deliver executes an inbound message against the handler, exposing the
// originating sender through XDomainSender for the duration of the call.
func (q *Queue) Deliver(msg Message, handler Handler) error {
	q.mu.Lock()
	q.relaying = true
	q.xSender = msg.Sender
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.relaying = false
		q.xSender = common.Address{}
		q.mu.Unlock()
	}()

	return handler.HandleMessage(msg)
}

// XDomainSender reports the sender of the message currently being delivered.
func (q *Queue) XDomainSender() (common.Address, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.relaying {
		return common.Address{}, ErrNotRelaying
	}
	return q.xSender, nil
}
