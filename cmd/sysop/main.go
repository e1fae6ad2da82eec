// Command sysop is the operator console: it dials the game port, logs in as
// a normal player, and then speaks the same line protocol a game client
// does. The shortcuts save/stats/shutdown expand to SYSOP commands with the
// operator password filled in, everything else goes to the wire verbatim.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		addr  = flag.String("addr", "127.0.0.1:1234", "server address")
		user  = flag.String("user", "", "player name (auto-login when set)")
		pass  = flag.String("pass", "", "player password")
		sysop = flag.String("sysop", "", "sysop password (enables save/stats/shutdown shortcuts)")
	)
	flag.Parse()

	conn, err := net.DialTimeout("tcp", *addr, 10*time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	defer conn.Close()
	rd := bufio.NewReader(conn)

	roundTrip := func(line string) (string, error) {
		if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
			return "", err
		}
		reply, err := rd.ReadString('\n')
		return strings.TrimRight(reply, "\r\n"), err
	}

	if *user != "" {
		reply, err := roundTrip(fmt.Sprintf("USER %s:%s:", *user, *pass))
		if err != nil {
			fmt.Fprintln(os.Stderr, "login:", err)
			os.Exit(1)
		}
		fmt.Println(reply)
		if strings.HasPrefix(reply, "BAD") {
			os.Exit(1)
		}
	}

	in := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}
		if line == "exit" {
			line = "QUIT"
		}
		switch strings.ToLower(line) {
		case "save", "stats", "shutdown":
			if *sysop == "" {
				fmt.Println("set -sysop to use this shortcut")
				fmt.Print("> ")
				continue
			}
			line = fmt.Sprintf("SYSOP %s %s:", strings.ToUpper(line), *sysop)
		}
		reply, err := roundTrip(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "connection closed:", err)
			os.Exit(1)
		}
		fmt.Println(reply)
		if strings.HasPrefix(line, "QUIT") {
			return
		}
		fmt.Print("> ")
	}
}
