package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SealForPlayer encrypts data with the player's id. Player ids are uuids, so
// the key is the 16 raw bytes of the id (AES-128).
func SealForPlayer(data []byte, playerID string) ([]byte, error) {
	key, err := playerKey(playerID)
	if err != nil {
		return nil, err
	}
	return Seal(data, key)
}

func OpenForPlayer(data []byte, playerID string) ([]byte, error) {
	key, err := playerKey(playerID)
	if err != nil {
		return nil, err
	}
	return Open(data, key)
}

func playerKey(playerID string) ([]byte, error) {
	id, err := uuid.Parse(playerID)
	if err != nil {
		return nil, errors.Wrapf(err, "Player ID [%s] is not a uuid", playerID)
	}
	bytes, err := id.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "Unable to convert encryption key (uuid) to bytes")
	}
	return bytes, nil
}

// Seal encrypts data with AES-GCM. The random nonce is prepended to the output.
func Seal(data []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

// Open reverses Seal. Key must be 16, 24 or 32 bytes.
func Open(data []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("Encrypted message is shorter than the nonce")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	decrypted, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to decrypt message")
	}
	return decrypted, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(c)
}
