package core

import "strings"

// channelPrefix namespaces chat channels so derived ids cannot collide with
// anything else that might share the transport.
const channelPrefix = "chat_"

// DeriveChannel maps an unordered pair of participant ids to the canonical
// channel id both sides resolve to. The pair is sorted lexicographically
// before concatenation, so DeriveChannel(a, b) == DeriveChannel(b, a).
// The ordering must never change: clients rejoin channels derived in
// earlier sessions.
func DeriveChannel(participantA, participantB string) (string, error) {
	a := strings.TrimSpace(participantA)
	b := strings.TrimSpace(participantB)
	if a == "" || b == "" {
		return "", ErrInvalidParticipant
	}

	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return channelPrefix + lo + "_" + hi, nil
}
