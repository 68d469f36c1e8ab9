package uid

import (
	"crypto/rand"
	"encoding/hex"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const roomCodeLength = 6

// RoomCode generates a short shareable room code like "X7K2QD".
func RoomCode() string {
	b := make([]byte, roomCodeLength)
	rand.Read(b)
	for i := range b {
		b[i] = roomCodeAlphabet[int(b[i])%len(roomCodeAlphabet)]
	}
	return string(b)
}

// Suffix returns n random hex characters, used to de-collide generated
// usernames.
func Suffix(n int) string {
	b := make([]byte, (n+1)/2)
	rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
