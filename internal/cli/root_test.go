package cli

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNew(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.Logger == nil {
		t.Fatal("New() returned CLI with nil logger")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.SetLogLevel(LogDebug)

	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("SetLogLevel() level = %v, want %v", c.Logger.GetLevel(), log.DebugLevel)
	}
}

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != "schemaviz" {
		t.Errorf("RootCommand() Use = %q, want %q", root.Use, "schemaviz")
	}
	if root.Version == "" {
		t.Error("RootCommand() should have a version")
	}

	want := []string{"render", "inspect", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("RootCommand() missing subcommand %q", name)
		}
	}
}

func TestCacheCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	cmd := c.cacheCommand()

	want := []string{"clear", "stats", "path"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("cacheCommand() missing subcommand %q", name)
		}
	}
}
