package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestManager_ConnectAllDegradesPerServer(t *testing.T) {
	m := NewManager(nil)

	specs := []ServerConfig{
		{Name: "no-command"},
		{Name: "missing-binary", Command: "agentes-test-does-not-exist-4f9a"},
	}

	errs := m.ConnectAll(context.Background(), specs)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}

	for i, err := range errs {
		var ce *ConnectionError
		if !errors.As(err, &ce) {
			t.Errorf("errs[%d] = %v, want *ConnectionError", i, err)
			continue
		}
		if ce.Server != specs[i].Name {
			t.Errorf("errs[%d].Server = %q, want %q", i, ce.Server, specs[i].Name)
		}
		if !strings.HasPrefix(ce.Error(), "error conectando a servidor '"+specs[i].Name+"'") {
			t.Errorf("errs[%d] message = %q", i, ce.Error())
		}
	}

	if got := len(m.Connections()); got != 0 {
		t.Errorf("Connections() has %d entries, want 0", got)
	}
}

func TestManager_CloseAllIdempotent(t *testing.T) {
	m := NewManager(nil)

	mt := newMockTransport()
	m.conns = append(m.conns, &Connection{
		Client: NewClient("test", mt, nil),
		Config: ServerConfig{Name: "test"},
	})

	if err := m.CloseAll(); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	if !mt.closed {
		t.Error("transport not closed")
	}

	// A second call must not close anything again.
	mt.closed = false
	if err := m.CloseAll(); err != nil {
		t.Fatalf("CloseAll (repeat): %v", err)
	}
	if mt.closed {
		t.Error("second CloseAll closed the transport again")
	}
}

func TestManager_ConnectionsReturnsCopy(t *testing.T) {
	m := NewManager(nil)
	m.conns = append(m.conns, &Connection{Config: ServerConfig{Name: "a"}})

	conns := m.Connections()
	conns[0] = nil

	if m.Connections()[0] == nil {
		t.Error("mutating the returned slice leaked into the manager")
	}
}
