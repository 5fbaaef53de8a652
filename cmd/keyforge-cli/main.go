// Command keyforge-cli is an interactive client for the KeyForge text
// protocol.
//
// Usage:
//
//	keyforge-cli [flags]
//
// Flags:
//
//	-address string  Server address (default "127.0.0.1:7904")
//
// Inside the console, protocol commands (GET, PUT, UPDATE, DELETE, AUTH,
// SHUTDOWN) are sent verbatim to the server; "help" and "exit" are handled
// locally.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

func main() {
	address := flag.String("address", "127.0.0.1:7904", "server address")
	flag.Parse()

	if err := run(*address); err != nil {
		fmt.Fprintf(os.Stderr, "keyforge-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(address string) error {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "keyforge> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "Connected to %s\n", address)
	printHelp(rl)

	responses := bufio.NewReader(conn)
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		switch strings.ToLower(strings.Fields(input)[0]) {
		case "help", "?":
			printHelp(rl)
			continue
		case "exit", "quit":
			return nil
		}

		if _, err := fmt.Fprintf(conn, "%s\n", input); err != nil {
			return fmt.Errorf("connection lost: %w", err)
		}
		resp, err := responses.ReadString('\n')
		if err != nil {
			return fmt.Errorf("connection closed by server")
		}
		fmt.Fprint(rl.Stdout(), resp)
	}
}

func printHelp(rl *readline.Instance) {
	fmt.Fprint(rl.Stdout(), `Commands:
  GET <key>              Read a value
  PUT <key> <value>      Create or replace a value
  UPDATE <key> <value>   Replace an existing value
  DELETE <key>           Remove a key
  AUTH <token>           Authenticate this connection
  SHUTDOWN               Ask the server to shut down
  help                   Show this help
  exit                   Leave the console
`)
}
