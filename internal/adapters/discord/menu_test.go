package discord

import (
	"testing"

	"github.com/google/uuid"
)

func TestMenusClaim(t *testing.T) {
	m := newMenus()
	id := uuid.New()
	m.add("msg", menu{guildID: "g1", runID: id, ownerID: "mod"})

	if _, ok := m.claim("msg", "someone"); ok {
		t.Fatal("non owner claimed the menu")
	}
	mn, ok := m.claim("msg", "mod")
	if !ok || mn.runID != id {
		t.Fatalf("owner claim = %+v, %v", mn, ok)
	}
	if _, ok := m.claim("msg", "mod"); ok {
		t.Fatal("second prompt opened while the first is pending")
	}
	m.release("msg")
	if _, ok := m.claim("msg", "mod"); !ok {
		t.Fatal("claim after release failed")
	}
	m.remove("msg")
	if _, ok := m.claim("msg", "mod"); ok {
		t.Fatal("removed menu claimed")
	}
}
