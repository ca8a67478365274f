package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"

	verrors "github.com/securevault/securevault/internal/errors"
)

// lengthPrefixSize is the size of the little-endian IV length field.
const lengthPrefixSize = 4

// Encrypt seals plaintext under key with a freshly drawn 12-byte IV.
// The returned ciphertext has the GCM tag appended.
func Encrypt(plaintext []byte, key *SymmetricKey) (ciphertext []byte, iv []byte, err error) {
	if !key.usable() {
		return nil, nil, fmt.Errorf("%w: key is not usable for encryption", verrors.ErrEncryptFailed)
	}

	iv = make([]byte, IVSize)
	if _, err := io.ReadFull(randReader, iv); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to generate IV: %v", verrors.ErrEncryptFailed, err)
	}

	ciphertext = key.aead.Seal(nil, iv, plaintext, nil)
	return ciphertext, iv, nil
}

// Decrypt opens ciphertext produced by Encrypt. A tag that does not verify
// yields ErrAuthentication and no plaintext.
func Decrypt(ciphertext []byte, key *SymmetricKey, iv []byte) ([]byte, error) {
	if !key.usable() {
		return nil, fmt.Errorf("%w: key is not usable for decryption", verrors.ErrDecryptFailed)
	}

	aead, err := aeadForIV(key, len(iv))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verrors.ErrDecryptFailed, err)
	}

	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, verrors.ErrAuthentication
	}

	return plaintext, nil
}

// aeadForIV returns a GCM instance accepting nonces of ivLen bytes. The
// packed format allows any declared IV length, so non-standard lengths get
// their own instance.
func aeadForIV(key *SymmetricKey, ivLen int) (cipher.AEAD, error) {
	if ivLen == key.aead.NonceSize() {
		return key.aead, nil
	}
	if ivLen == 0 {
		return nil, fmt.Errorf("IV must not be empty")
	}

	block, err := aes.NewCipher(key.raw[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivLen)
}

// Pack lays out iv and ciphertext as IVLEN(uint32 LE) || IV || CIPHERTEXT.
func Pack(ciphertext []byte, iv []byte) []byte {
	packed := make([]byte, lengthPrefixSize+len(iv)+len(ciphertext))
	binary.LittleEndian.PutUint32(packed[:lengthPrefixSize], uint32(len(iv)))
	copy(packed[lengthPrefixSize:], iv)
	copy(packed[lengthPrefixSize+len(iv):], ciphertext)
	return packed
}

// Unpack reverses Pack. The returned slices are copies and do not alias buffer.
func Unpack(buffer []byte) (ciphertext []byte, iv []byte, err error) {
	if len(buffer) < lengthPrefixSize {
		return nil, nil, fmt.Errorf("%w: buffer is %d bytes, shorter than the %d-byte length prefix",
			verrors.ErrFormat, len(buffer), lengthPrefixSize)
	}

	// Compare in uint64 so a huge declared length cannot overflow on 32-bit platforms.
	ivLen := uint64(binary.LittleEndian.Uint32(buffer[:lengthPrefixSize]))
	if uint64(len(buffer)) < lengthPrefixSize+ivLen {
		return nil, nil, fmt.Errorf("%w: declared IV length %d exceeds remaining %d bytes",
			verrors.ErrFormat, ivLen, len(buffer)-lengthPrefixSize)
	}

	end := lengthPrefixSize + int(ivLen)
	iv = append([]byte{}, buffer[lengthPrefixSize:end]...)
	ciphertext = append([]byte{}, buffer[end:]...)

	return ciphertext, iv, nil
}

// Seal encrypts plaintext and returns the packed buffer.
func Seal(plaintext []byte, key *SymmetricKey) ([]byte, error) {
	ciphertext, iv, err := Encrypt(plaintext, key)
	if err != nil {
		return nil, err
	}
	return Pack(ciphertext, iv), nil
}

// Open unpacks and decrypts a buffer produced by Seal.
func Open(packed []byte, key *SymmetricKey) ([]byte, error) {
	ciphertext, iv, err := Unpack(packed)
	if err != nil {
		return nil, err
	}
	return Decrypt(ciphertext, key, iv)
}
