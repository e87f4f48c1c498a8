package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltLength   = 16
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var ErrNoAccessKey = errors.New("no access key stored")

// Vault keeps the backend access key on disk sealed with XChaCha20-Poly1305
// under a key derived from the device passphrase via Argon2id. The file
// layout is salt || nonce || ciphertext.
type Vault struct {
	path       string
	passphrase []byte
}

func NewVault(path, passphrase string) *Vault {
	return &Vault{path: path, passphrase: []byte(passphrase)}
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

// StoreAccessKey seals the access key and writes it to the vault file,
// replacing any previous key.
func (v *Vault) StoreAccessKey(accessKey string) error {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return err
	}

	aead, err := chacha20poly1305.NewX(deriveKey(v.passphrase, salt))
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}

	sealed := aead.Seal(nil, nonce, []byte(accessKey), nil)

	payload := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)

	if err := os.MkdirAll(filepath.Dir(v.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(v.path, payload, 0o600)
}

// AccessKey opens the vault file and returns the stored access key.
func (v *Vault) AccessKey() (string, error) {
	payload, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoAccessKey
		}
		return "", err
	}

	if len(payload) < saltLength+chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("vault file %s is truncated", v.path)
	}
	salt := payload[:saltLength]
	nonce := payload[saltLength : saltLength+chacha20poly1305.NonceSizeX]
	sealed := payload[saltLength+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(deriveKey(v.passphrase, salt))
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open vault %s: %w", v.path, err)
	}
	return string(plain), nil
}
