package app

import (
	"path/filepath"
	"testing"

	"github.com/bubblechat/bubblechat/internal/control"
)

func TestSendCommandReachesRunningAgent(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "ctl.sock")
	got := make(chan string, 1)
	server, err := control.Listen(sock, func(command string) error {
		got <- command
		return nil
	})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer server.Close()

	if err := Run(Config{Command: CommandToggle, SocketPath: sock}); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case command := <-got:
		if command != CommandToggle {
			t.Fatalf("agent received %q, want %q", command, CommandToggle)
		}
	default:
		t.Fatalf("command never delivered")
	}
}

func TestSendCommandWithoutAgentFails(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "nobody.sock")
	if err := Run(Config{Command: CommandShow, SocketPath: sock}); err == nil {
		t.Fatalf("expected an error when no agent is listening")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := Run(Config{Command: "explode"}); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}
