// Package protocol implements the line-oriented wire protocol spoken between
// clients and the game server. One request per line, newline-terminated.
// Every reply starts with "OK" or "BAD".
package protocol

import (
	"strconv"
	"strings"
)

const Version = "1.0"

// Operation tags. The decoder maps the first whitespace-delimited token of a
// line onto one of these; a bare positive integer is special-cased as OpMove.
const (
	OpNew        = "NEW"
	OpUser       = "USER"
	OpQuit       = "QUIT"
	OpMove       = "MOVE"
	OpDescribe   = "DESCRIPTION"
	OpUpdate     = "UPDATE"
	OpFedcomm    = "FEDCOMM"
	OpOnline     = "ONLINE"
	OpMyInfo     = "MYINFO"
	OpGameInfo   = "GAMEINFO"
	OpPlayerInfo = "PLAYERINFO"
	OpShipInfo   = "SHIPINFO"
	OpPortInfo   = "PORTINFO"
	OpLand       = "LAND"
	OpOnPlanet   = "ONPLANET"
	OpPort       = "PORT"
	OpPlanet     = "PLANET"
	OpStardock   = "STARDOCK"
	OpNode       = "NODE"
	OpGenesis    = "GENESIS"
	OpPath       = "PATH"
	OpSysop      = "SYSOP"
)

// Subcommand tags for the compound operations.
const (
	SubLand      = "LAND"
	SubTrade     = "TRADE"
	SubQuit      = "QUIT"
	SubTake      = "TAKE"
	SubLeave     = "LEAVE"
	SubCitadel   = "CITADEL"
	SubUpgrade   = "UPGRADE"
	SubInfo      = "INFO"
	SubBuyShip   = "BUYSHIP"
	SubSellShip  = "SELLSHIP"
	SubPriceShip = "PRICESHIP"
	SubDeposit   = "DEPOSIT"
	SubWithdraw  = "WITHDRAW"
	SubBalance   = "BALANCE"
	SubList      = "LIST"
	SubHop       = "HOP"
	SubSave      = "SAVE"
	SubShutdown  = "SHUTDOWN"
	SubStats     = "STATS"
)

// Command is one decoded request line.
type Command struct {
	Op   string
	Sub  string   // set only for compound ops (PORT, PLANET, STARDOCK, NODE, SYSOP)
	Args []string // colon-delimited fields, trailing colon stripped
}

type gate int

const (
	gateAny gate = iota
	gateAuthed
	gateUnauthed
)

type cmdSpec struct {
	gate    gate
	hasSub  bool
	subs    map[string]int // sub -> required arg count (-1 = any)
	minArgs int
	maxArgs int // -1 = any
}

var commands = map[string]cmdSpec{
	OpNew:        {gate: gateUnauthed, minArgs: 3, maxArgs: 3},
	OpUser:       {gate: gateUnauthed, minArgs: 2, maxArgs: 2},
	OpQuit:       {gate: gateAuthed},
	OpDescribe:   {gate: gateAuthed},
	OpUpdate:     {gate: gateAuthed},
	OpFedcomm:    {gate: gateAuthed, minArgs: 1, maxArgs: 1},
	OpOnline:     {gate: gateAuthed},
	OpMyInfo:     {gate: gateAuthed},
	OpGameInfo:   {gate: gateAuthed},
	OpPlayerInfo: {gate: gateAuthed, minArgs: 1, maxArgs: 1},
	OpShipInfo:   {gate: gateAuthed, minArgs: 1, maxArgs: 1},
	OpPortInfo:   {gate: gateAuthed},
	OpLand:       {gate: gateAuthed, minArgs: 1, maxArgs: 1},
	OpOnPlanet:   {gate: gateAuthed},
	OpGenesis:    {gate: gateAuthed, minArgs: 2, maxArgs: 2},
	OpPath:       {gate: gateAuthed, minArgs: 1, maxArgs: 1},
	OpPort: {gate: gateAuthed, hasSub: true, subs: map[string]int{
		SubLand: 0, SubTrade: 3, SubQuit: 0,
	}},
	OpPlanet: {gate: gateAuthed, hasSub: true, subs: map[string]int{
		SubTake: 2, SubLeave: 2, SubCitadel: 0, SubUpgrade: 0, SubQuit: 0, SubInfo: 0,
	}},
	OpStardock: {gate: gateAuthed, hasSub: true, subs: map[string]int{
		SubBuyShip: 2, SubSellShip: 0, SubPriceShip: 0,
		SubDeposit: 1, SubWithdraw: 1, SubBalance: 0, SubList: 0,
	}},
	OpNode: {gate: gateAuthed, hasSub: true, subs: map[string]int{
		SubInfo: 0, SubHop: 1,
	}},
	OpSysop: {gate: gateAuthed, hasSub: true, subs: map[string]int{
		SubSave: 1, SubShutdown: 1, SubStats: 1,
	}},
}

// Parse decodes a single request line. The line must already be stripped of
// its trailing newline. authed gates the command set: login and registration
// are only valid without a session, everything else requires one.
func Parse(line string, authed bool) (Command, error) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return Command{}, ErrEmpty
	}

	head, rest, _ := strings.Cut(line, " ")

	// A bare positive integer is a move order.
	if n, err := strconv.Atoi(head); err == nil {
		if n <= 0 || rest != "" {
			return Command{}, ErrMalformed
		}
		if !authed {
			return Command{}, ErrLoginRequired
		}
		return Command{Op: OpMove, Args: []string{head}}, nil
	}

	spec, ok := commands[head]
	if !ok {
		return Command{}, ErrUnknownCommand
	}
	switch spec.gate {
	case gateAuthed:
		if !authed {
			return Command{}, ErrLoginRequired
		}
	case gateUnauthed:
		if authed {
			return Command{}, ErrAlreadyLoggedIn
		}
	}

	cmd := Command{Op: head}
	argstr := rest
	if spec.hasSub {
		sub, subrest, _ := strings.Cut(rest, " ")
		want, ok := spec.subs[sub]
		if !ok {
			return Command{}, ErrUnknownCommand
		}
		cmd.Sub = sub
		argstr = subrest
		args, err := splitFields(argstr, want, want)
		if err != nil {
			return Command{}, err
		}
		cmd.Args = args
		return cmd, nil
	}

	args, err := splitFields(argstr, spec.minArgs, spec.maxArgs)
	if err != nil {
		return Command{}, err
	}
	cmd.Args = args
	return cmd, nil
}

// splitFields parses a colon-delimited argument string. Arguments are
// terminated by a trailing colon; a missing terminator is a decode error,
// not a partial success.
func splitFields(s string, min, max int) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if min > 0 {
			return nil, ErrMalformed
		}
		return nil, nil
	}
	if min == 0 && max == 0 {
		return nil, ErrMalformed
	}
	if !strings.HasSuffix(s, ":") {
		return nil, ErrMalformed
	}
	fields := strings.Split(strings.TrimSuffix(s, ":"), ":")
	if len(fields) < min {
		return nil, ErrMalformed
	}
	if max >= 0 && len(fields) > max {
		return nil, ErrMalformed
	}
	return fields, nil
}
