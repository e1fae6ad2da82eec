package world

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"warptrade.io/internal/protocol"
)

// Registration and login, driven by the session layer's NEW/USER commands.
// Passwords are stored bcrypt-hashed; the hash round-trips opaquely through
// the save files.

func validName(name string) bool {
	if len(name) < 2 || len(name) > 40 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == ' ' || r == '-' || r == '_' || r == '\'':
		default:
			return false
		}
	}
	return strings.TrimSpace(name) == name
}

// Register creates a new player with a starter ship and places it in the
// start sector. The duplicate-name check is atomic with insertion under the
// world lock for both names, so two sessions racing on one name cannot both
// win.
func (w *World) Register(name, password, shipName string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !validName(name) || !validName(shipName) {
		return 0, w.authFail("REGISTER", protocol.CodeBadRequest, name, "invalid name")
	}
	if password == "" {
		return 0, w.authFail("REGISTER", protocol.CodeBadRequest, name, "empty password")
	}
	if _, taken := w.playerNames[name]; taken {
		w.authFail("REGISTER", protocol.CodeConflict, name, "name taken")
		return 0, errDuplicateName
	}
	if _, taken := w.shipNames[shipName]; taken {
		w.authFail("REGISTER", protocol.CodeConflict, shipName, "name taken")
		return 0, errDuplicateName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	p, err := w.insertPlayerNamed(name)
	if err != nil {
		return 0, err
	}
	s, err := w.insertShipNamed(shipName)
	if err != nil {
		// Roll the player insertion back; nothing else references it yet.
		delete(w.playerNames, name)
		delete(w.players, p.ID)
		return 0, err
	}

	p.PassHash = string(hash)
	p.Credits = w.cfg.StartingCredits
	p.Turns = w.cfg.StartingTurns
	p.ShipID = s.ID
	p.LoggedIn = true

	s.Type = 1
	s.Owner = p.ID
	s.Sector = w.cfg.StartSector
	s.Holds = w.cfg.StartingHolds
	s.Fighters = w.cfg.StartingFighters
	s.Shields = w.cfg.StartingShields

	w.sectorAddPlayer(s.Sector, p.ID)
	w.broadcastSector(s.Sector, p.ID, fmt.Sprintf("%s has entered the sector", p.Name))
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "REGISTER", Sector: s.Sector, Detail: name})
	w.log.Printf("registered player %q (ship %q)", name, shipName)
	return p.ID, nil
}

// Login validates credentials and marks the player logged in. A player
// already logged in elsewhere is rejected; the stale session must drop
// first.
func (w *World) Login(name, password string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, err := w.findPlayerByName(name)
	if err != nil {
		return 0, w.authFail("LOGIN", protocol.CodeNotFound, name, "unknown player")
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PassHash), []byte(password)) != nil {
		return 0, w.authFail("LOGIN", protocol.CodeNoPermission, name, "bad password")
	}
	if p.LoggedIn {
		return 0, w.authFail("LOGIN", protocol.CodeConflict, name, "already logged in")
	}
	p.LoggedIn = true
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "LOGIN"})
	w.log.Printf("player %q logged in", name)
	return p.ID, nil
}

// Logout clears the logged-in flag. The player and ship entities persist
// for reconnection; an in-flight transit stays recorded and resolves on the
// next login.
func (w *World) Logout(playerID int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.players[playerID]
	if p == nil || !p.LoggedIn {
		return
	}
	p.LoggedIn = false
	p.ResetTrade()
	w.auditWrite(AuditEntry{Actor: p.ID, Action: "LOGOUT"})
	w.log.Printf("player %q logged out", p.Name)
}

// PlayerName resolves a player id for session logs.
func (w *World) PlayerName(playerID int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p := w.players[playerID]; p != nil {
		return p.Name
	}
	return ""
}

// CheckSysopPass validates the sysop console password against the
// configured hash.
func (w *World) CheckSysopPass(pass string) bool {
	w.mu.Lock()
	h := w.cfg.SysopPassHash
	w.mu.Unlock()
	// The compare runs outside the world lock; bcrypt is deliberately slow.
	if h != "" && bcrypt.CompareHashAndPassword([]byte(h), []byte(pass)) == nil {
		return true
	}
	w.mu.Lock()
	w.auditWrite(AuditEntry{Action: "SYSOP_FAIL", Code: protocol.CodeNoPermission})
	w.mu.Unlock()
	return false
}

// authFail records a refused registration or login with its stable reason
// code. The returned error text is what the session renders after BAD.
func (w *World) authFail(action, code, name, reason string) error {
	w.auditWrite(AuditEntry{Action: action + "_FAIL", Code: code, Detail: name + ": " + reason})
	return fmt.Errorf("%s", reason)
}
