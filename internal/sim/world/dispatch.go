package world

import (
	"strings"

	"warptrade.io/internal/protocol"
)

// handler is one command executor entry. Handlers run with w.mu held, must
// validate every precondition before mutating anything, and return the full
// reply line.
type handler func(w *World, p *Player, cmd protocol.Command) string

var dispatch map[string]handler

func init() {
	dispatch = map[string]handler{
		protocol.OpMove:       (*World).cmdMove,
		protocol.OpDescribe:   (*World).cmdDescribe,
		protocol.OpUpdate:     (*World).cmdUpdate,
		protocol.OpFedcomm:    (*World).cmdFedcomm,
		protocol.OpOnline:     (*World).cmdOnline,
		protocol.OpMyInfo:     (*World).cmdMyInfo,
		protocol.OpGameInfo:   (*World).cmdGameInfo,
		protocol.OpPlayerInfo: (*World).cmdPlayerInfo,
		protocol.OpShipInfo:   (*World).cmdShipInfo,
		protocol.OpPortInfo:   (*World).cmdPortInfo,
		protocol.OpLand:       (*World).cmdLandPlanet,
		protocol.OpOnPlanet:   (*World).cmdOnPlanet,
		protocol.OpPort:       (*World).cmdPort,
		protocol.OpPlanet:     (*World).cmdPlanet,
		protocol.OpStardock:   (*World).cmdStardock,
		protocol.OpNode:       (*World).cmdNode,
		protocol.OpGenesis:    (*World).cmdGenesis,
		protocol.OpPath:       (*World).cmdPath,
	}
}

// transitAllowed is the exact set of operations admitted while a player is
// mid-warp. Everything else answers a moving rejection.
var transitAllowed = map[string]bool{
	protocol.OpUpdate:   true,
	protocol.OpMyInfo:   true,
	protocol.OpOnline:   true,
	protocol.OpGameInfo: true,
	protocol.OpFedcomm:  true,
}

// Execute runs one decoded command for a player and returns the reply line.
// The world lock is held for the whole read-modify-write sequence.
func (w *World) Execute(playerID int, cmd protocol.Command) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.players[playerID]
	if p == nil || !p.LoggedIn {
		return w.deny(playerID, cmd, protocol.CodeInternal, "no such player")
	}

	// Transit resolves lazily: any command is a status poll for the
	// purposes of completing an arrival whose time has passed.
	w.resolveTransit(p)

	if p.InTransit && !transitAllowed[cmd.Op] {
		return w.deny(p.ID, cmd, protocol.CodeInTransit, "You are moving through space")
	}

	h, ok := dispatch[cmd.Op]
	if !ok {
		return w.deny(p.ID, cmd, protocol.CodeProtoBadRequest, "no matching command")
	}
	reply := h(w, p, cmd)
	if !protocol.IsOK(reply) {
		w.auditWrite(AuditEntry{Actor: p.ID, Action: "DENY", Code: protocol.CodeBadRequest,
			Detail: opString(cmd) + " " + strings.TrimPrefix(reply, protocol.PrefixBad+": ")})
	}
	return reply
}

// deny records a refused command in the audit stream with its stable reason
// code and renders the BAD reply.
func (w *World) deny(actor int, cmd protocol.Command, code, reason string) string {
	w.auditWrite(AuditEntry{Actor: actor, Action: "DENY", Code: code,
		Detail: opString(cmd) + " " + reason})
	return protocol.Badf("%s", reason)
}

func opString(cmd protocol.Command) string {
	if cmd.Sub != "" {
		return cmd.Op + " " + cmd.Sub
	}
	return cmd.Op
}
