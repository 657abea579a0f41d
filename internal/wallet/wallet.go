// Package wallet tracks per-player balances and per-hand escrow.
//
// Every unit a player wagers moves from their free balance into an
// authorization record keyed by (player, hand) before it can reach the pot,
// so a player can never stake more than they hold and settlement can
// proportion payouts by what each player actually committed.
package wallet

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/coder/quartz"

	"github.com/tablestakes/holdem/internal/kv"
)

// Money is an amount of chips. Balances never go negative.
type Money = int

// DefaultStake is the balance granted to a player the first time they are seen.
const DefaultStake Money = 1000

var (
	// ErrInsufficientFunds is returned when an operation would take a free
	// balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyClaimed is returned when the daily bonus has already been
	// granted for the current calendar day.
	ErrAlreadyClaimed = errors.New("daily bonus already claimed")
)

// dailyBonuses maps a 1-6 dice roll to the bonus amount it pays.
var dailyBonuses = [6]Money{5, 20, 40, 80, 160, 320}

// DailyBonus returns the bonus paid for a dice roll in 1..6.
func DailyBonus(roll int) Money {
	if roll < 1 || roll > len(dailyBonuses) {
		return 0
	}
	return dailyBonuses[roll-1]
}

// Ledgers hands out per-player wallet handles backed by a shared store.
// Mutations for a given player are serialized through a per-player lock;
// operations on different players proceed independently.
type Ledgers struct {
	store kv.Store
	clock quartz.Clock
	stake Money

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Ledgers.
type Option func(*Ledgers)

// WithClock substitutes the clock used for daily-bonus calendar days.
func WithClock(clock quartz.Clock) Option {
	return func(l *Ledgers) { l.clock = clock }
}

// WithStartingStake overrides the balance granted to unseen players.
func WithStartingStake(stake Money) Option {
	return func(l *Ledgers) { l.stake = stake }
}

// NewLedgers creates a wallet manager over the given store.
func NewLedgers(store kv.Store, opts ...Option) *Ledgers {
	l := &Ledgers{
		store: store,
		clock: quartz.NewReal(),
		stake: DefaultStake,
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wallet returns the handle for a player, seeding the starting stake on first
// sight. Handles for the same player share one lock.
func (l *Ledgers) Wallet(playerID string) *Wallet {
	w := &Wallet{
		playerID: playerID,
		store:    l.store,
		clock:    l.clock,
		mu:       l.lockFor(playerID),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := l.store.Get(w.balanceKey()); !ok {
		l.store.Set(w.balanceKey(), strconv.Itoa(l.stake))
	}
	return w
}

func (l *Ledgers) lockFor(playerID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if mu, ok := l.locks[playerID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	l.locks[playerID] = mu
	return mu
}

// Wallet is one player's view of the ledger.
type Wallet struct {
	playerID string
	store    kv.Store
	clock    quartz.Clock
	mu       *sync.Mutex
}

// PlayerID returns the owning player's id.
func (w *Wallet) PlayerID() string { return w.playerID }

func (w *Wallet) balanceKey() string {
	return "wallet:" + w.playerID
}

func (w *Wallet) dailyKey() string {
	return w.balanceKey() + ":daily"
}

func (w *Wallet) escrowKey(handID string) string {
	return w.balanceKey() + ":hand:" + handID
}

// Value returns the player's free balance.
func (w *Wallet) Value() Money {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance()
}

func (w *Wallet) balance() Money {
	raw, ok := w.store.Get(w.balanceKey())
	if !ok {
		return DefaultStake
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Inc adds amount (possibly negative) to the free balance. The balance is
// never allowed below zero.
func (w *Wallet) Inc(amount Money) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inc(amount)
}

func (w *Wallet) inc(amount Money) error {
	if w.balance()+amount < 0 {
		return fmt.Errorf("%w: balance %d, change %d", ErrInsufficientFunds, w.balance(), amount)
	}
	_, err := w.store.IncrBy(w.balanceKey(), int64(amount))
	return err
}

// Authorize moves amount from the free balance into escrow for handID.
func (w *Wallet) Authorize(handID string, amount Money) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.inc(-amount); err != nil {
		return err
	}
	_, err := w.store.IncrBy(w.escrowKey(handID), int64(amount))
	return err
}

// AuthorizeAll moves the entire free balance into escrow for handID and
// returns the amount moved. Used for an all-in.
func (w *Wallet) AuthorizeAll(handID string) (Money, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	amount := w.balance()
	if amount > 0 {
		if _, err := w.store.IncrBy(w.escrowKey(handID), int64(amount)); err != nil {
			return 0, err
		}
		w.store.Set(w.balanceKey(), "0")
	}
	return amount, nil
}

// AuthorizedMoney returns the escrow held for handID, zero if none.
func (w *Wallet) AuthorizedMoney(handID string) Money {
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, ok := w.store.Get(w.escrowKey(handID))
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Approve clears the escrow record for handID. Free balance is untouched;
// escrowed money has already been consumed by payouts or forfeited.
func (w *Wallet) Approve(handID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.store.Delete(w.escrowKey(handID))
}

// HasDailyBonus reports whether the bonus was already claimed today (UTC).
func (w *Wallet) HasDailyBonus() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasDailyBonus()
}

func (w *Wallet) hasDailyBonus() bool {
	last, ok := w.store.Get(w.dailyKey())
	return ok && last == w.today()
}

func (w *Wallet) today() string {
	return w.clock.Now().UTC().Format("02/01/06")
}

// AddDaily credits a once-per-day bonus and returns the new balance.
func (w *Wallet) AddDaily(amount Money) (Money, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.hasDailyBonus() {
		return 0, ErrAlreadyClaimed
	}
	w.store.Set(w.dailyKey(), w.today())

	updated, err := w.store.IncrBy(w.balanceKey(), int64(amount))
	if err != nil {
		return 0, err
	}
	return Money(updated), nil
}
