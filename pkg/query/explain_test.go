package query

import (
	"testing"

	"github.com/eldarhac/GraphMind/pkg/common"
)

func TestCleanNotes(t *testing.T) {
	tests := map[string]string{
		"worked together at company Acme.":             "Acme",
		"Acme working together at company":             "Acme",
		"at Technion":                                  "Technion",
		"They studied together in Tel Aviv University": "Tel Aviv University",
		"worked with Dana at Google":                   "Google",
		"  ":                                           "",
		"Google":                                       "Google",
	}
	for in, want := range tests {
		if got := cleanNotes(in); got != want {
			t.Fatalf("cleanNotes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHopSentence(t *testing.T) {
	work := common.Connection{ConnectionType: common.ConnectionWork, Notes: "at Acme"}
	study := common.Connection{ConnectionType: "study"}
	other := common.Connection{ConnectionType: "MENTOR"}

	tests := []struct {
		name     string
		from, to common.Person
		c        common.Connection
		want     string
	}{
		{name: "current user subject", from: alice, to: bob, c: work, want: "You worked with Bob Brown at Acme."},
		{name: "third person", from: bob, to: carol, c: work, want: "Bob Brown worked with Carol Chen at Acme."},
		{name: "study without notes", from: bob, to: carol, c: study, want: "Bob Brown studied with Carol Chen."},
		{name: "generic type", from: carol, to: dave, c: other, want: "Carol Chen is connected to Dave Dunn."},
		{name: "generic from user", from: alice, to: dave, c: other, want: "You are connected to Dave Dunn."},
		{name: "user as object", from: bob, to: alice, c: other, want: "Bob Brown is connected to you."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hopSentence(tt.from, tt.to, tt.c, alice); got != tt.want {
				t.Fatalf("hopSentence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinNames(t *testing.T) {
	tests := []struct {
		people []common.Person
		want   string
	}{
		{nil, ""},
		{[]common.Person{bob}, "Bob Brown"},
		{[]common.Person{bob, carol}, "Bob Brown and Carol Chen"},
		{[]common.Person{bob, carol, dave}, "Bob Brown, Carol Chen and Dave Dunn"},
	}
	for _, tt := range tests {
		if got := joinNames(tt.people); got != tt.want {
			t.Fatalf("joinNames() = %q, want %q", got, tt.want)
		}
	}
}
