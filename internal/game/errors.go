package game

import "errors"

var (
	// ErrGameFull is returned when a seat request arrives at a full table.
	ErrGameFull = errors.New("game is full")

	// ErrAlreadySeated is returned when a player holding a seat asks for another.
	ErrAlreadySeated = errors.New("player already seated")

	// ErrHandInProgress is returned for seat or deal requests outside INITIAL.
	ErrHandInProgress = errors.New("hand in progress")

	// ErrNotEnoughPlayers is returned when a deal is requested below quorum.
	ErrNotEnoughPlayers = errors.New("not enough players")

	// ErrUnreachableState marks an internal invariant violation, e.g. a street
	// transition from an unmapped state. Processing for the room should stop;
	// other rooms are unaffected.
	ErrUnreachableState = errors.New("unreachable game state")
)
