package protocol

import "testing"

func TestParse_Login(t *testing.T) {
	cmd, err := Parse("NEW alice:secret:Wanderer:", false)
	if err != nil {
		t.Fatalf("parse NEW: %v", err)
	}
	if cmd.Op != OpNew || len(cmd.Args) != 3 || cmd.Args[0] != "alice" || cmd.Args[2] != "Wanderer" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = Parse("USER alice:secret:", false)
	if err != nil {
		t.Fatalf("parse USER: %v", err)
	}
	if cmd.Op != OpUser || len(cmd.Args) != 2 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParse_LoginGates(t *testing.T) {
	if _, err := Parse("USER a:b:", true); err != ErrAlreadyLoggedIn {
		t.Fatalf("USER while authed: got %v", err)
	}
	if _, err := Parse("DESCRIPTION", false); err != ErrLoginRequired {
		t.Fatalf("DESCRIPTION while unauthed: got %v", err)
	}
	if _, err := Parse("7", false); err != ErrLoginRequired {
		t.Fatalf("move while unauthed: got %v", err)
	}
}

func TestParse_BareIntegerIsMove(t *testing.T) {
	cmd, err := Parse("42", true)
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}
	if cmd.Op != OpMove || cmd.Args[0] != "42" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if _, err := Parse("0", true); err != ErrMalformed {
		t.Fatalf("zero sector: got %v", err)
	}
	if _, err := Parse("-3", true); err != ErrMalformed {
		t.Fatalf("negative sector: got %v", err)
	}
}

func TestParse_Compound(t *testing.T) {
	cmd, err := Parse("PORT TRADE 0:10:0:", true)
	if err != nil {
		t.Fatalf("parse PORT TRADE: %v", err)
	}
	if cmd.Op != OpPort || cmd.Sub != SubTrade || len(cmd.Args) != 3 {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	cmd, err = Parse("STARDOCK BUYSHIP 2:Starfire:", true)
	if err != nil {
		t.Fatalf("parse BUYSHIP: %v", err)
	}
	if cmd.Sub != SubBuyShip || cmd.Args[1] != "Starfire" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if _, err := Parse("PORT WARP", true); err != ErrUnknownCommand {
		t.Fatalf("unknown sub: got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []string{
		"NEW alice:secret:Wanderer", // missing trailing colon
		"NEW alice:secret:",         // too few fields
		"USER a:b:c:d:",             // too many fields
		"PLAYERINFO",                // missing argument
		"QUIT now",                  // trailing junk on a no-arg command
		"PORT TRADE 0:10:",          // sub with wrong arity
	}
	for _, line := range cases {
		if _, err := Parse(line, true); err != ErrMalformed {
			t.Fatalf("%q: got %v, want ErrMalformed", line, err)
		}
	}
	if _, err := Parse("WARPSPEED 9", true); err != ErrUnknownCommand {
		t.Fatalf("unknown keyword: got %v", err)
	}
	if _, err := Parse("   ", true); err != ErrEmpty {
		t.Fatalf("blank line: got %v", err)
	}
}

func TestReplies(t *testing.T) {
	if got := OKf("Now moving to %d", 9); got != "OK: Now moving to 9" {
		t.Fatalf("OKf: %q", got)
	}
	if got := Badf("not enough turns"); got != "BAD: not enough turns" {
		t.Fatalf("Badf: %q", got)
	}
	if !IsOK("OK: 120") || IsOK("BAD: nope") {
		t.Fatalf("IsOK misclassified")
	}
}
