package tmi

import "testing"

func TestPendingTableOrderPreserved(t *testing.T) {
	var p pendingTable
	p.add(Action{Kind: ActionLogIn})
	p.add(Action{Kind: ActionJoin, Channel: "a"})
	p.add(Action{Kind: ActionJoin, Channel: "b"})

	if !p.removeKind(ActionLogIn) {
		t.Fatal("removeKind(ActionLogIn) = false")
	}
	if len(p.actions) != 2 {
		t.Fatalf("len = %d, want 2", len(p.actions))
	}
	if p.actions[0].Channel != "a" || p.actions[1].Channel != "b" {
		t.Fatalf("order not preserved: %#v", p.actions)
	}
}

func TestPendingTableRetypeKind(t *testing.T) {
	var p pendingTable
	p.add(Action{Kind: ActionLogIn})

	if !p.retypeKind(ActionLogIn, ActionRequestCaps, 5.0, true) {
		t.Fatal("retypeKind returned false")
	}
	if !p.hasKind(ActionRequestCaps) {
		t.Fatal("expected ActionRequestCaps pending after retype")
	}
	if p.hasKind(ActionLogIn) {
		t.Fatal("ActionLogIn should no longer be pending")
	}
	if p.actions[0].Expiration != 5.0 || !p.actions[0].HasExpiration {
		t.Fatalf("expiration not updated: %#v", p.actions[0])
	}
}

func TestPendingTableExpired(t *testing.T) {
	var p pendingTable
	p.add(Action{Kind: ActionLogIn, Expiration: 10, HasExpiration: true})
	p.add(Action{Kind: ActionJoin, Channel: "never expires"})
	p.add(Action{Kind: ActionAwaitMotd, Expiration: 20, HasExpiration: true})

	idx := p.expired(15)
	if len(idx) != 1 || idx[0] != 0 {
		t.Fatalf("expired(15) = %v, want [0]", idx)
	}

	idx = p.expired(25)
	if len(idx) != 2 {
		t.Fatalf("expired(25) = %v, want 2 entries", idx)
	}
}

func TestPendingTableClear(t *testing.T) {
	var p pendingTable
	p.add(Action{Kind: ActionLogIn})
	p.clear()
	if len(p.actions) != 0 {
		t.Fatalf("clear left %d actions", len(p.actions))
	}
}
