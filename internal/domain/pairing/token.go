package pairing

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashToken дайджест токена сопряжения. В базе хранится только он:
// копия файла базы не дает сопрячь новое устройство.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
