package game

import (
	"strconv"
	"strings"
)

// Command is a single action intent for one turn. The set of variants is
// closed: Spawn, Construct, Move and Hold.
type Command interface {
	// Encode renders the command in the engine's grammar.
	Encode() string
	command()
}

// Spawn builds a new ship at the player's shipyard.
type Spawn struct{}

// Construct turns a ship into a dropoff.
type Construct struct {
	Ship ShipID
}

// Move moves a ship one cell.
type Move struct {
	Ship      ShipID
	Direction Direction
}

// Hold keeps a ship in place. It shares the move grammar but uses a reserved
// symbol that is not a direction.
type Hold struct {
	Ship ShipID
}

func (Spawn) Encode() string { return "g" }

func (c Construct) Encode() string {
	return "c " + strconv.FormatUint(uint64(c.Ship), 10)
}

func (c Move) Encode() string {
	return encodeMove(c.Ship, c.Direction.Symbol())
}

func (c Hold) Encode() string {
	return encodeMove(c.Ship, holdSymbol)
}

func encodeMove(ship ShipID, symbol byte) string {
	b := make([]byte, 0, 16)
	b = append(b, 'm', ' ')
	b = strconv.AppendUint(b, uint64(ship), 10)
	b = append(b, ' ', symbol)
	return string(b)
}

func (Spawn) command()     {}
func (Construct) command() {}
func (Move) command()      {}
func (Hold) command()      {}

// EncodeCommands joins commands with single spaces. The result has no
// trailing newline; the caller terminates the line when flushing.
func EncodeCommands(cmds []Command) string {
	parts := make([]string, len(cmds))
	for i, c := range cmds {
		parts[i] = c.Encode()
	}
	return strings.Join(parts, " ")
}
