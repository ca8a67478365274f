// Package secrets provides the cryptographic core of SecureVault.
//
// This package generates and holds the session key, encrypts and decrypts
// file contents with AES-256-GCM, and frames an IV together with its
// ciphertext into a single storable buffer.
//
// # Key Lifecycle
//
// A single 256-bit SymmetricKey is active per session:
//
//  1. GenerateKey draws a fresh key from crypto/rand
//  2. ExportKey / ImportKey convert it to and from standard base64
//  3. SaveKeyFile / LoadKeyFile persist the exported form with 0600 permissions
//
// WrapKey and UnwrapKey protect an exported key with a password. The
// password is stretched with PBKDF2-HMAC-SHA256 and the raw key is wrapped
// with AES-KWP.
//
// # Packed Buffer Format
//
// Every encrypted file is stored as:
//
//	IVLEN (uint32, little-endian) || IV (IVLEN bytes) || CIPHERTEXT
//
// IVLEN is 12 for keys created by this package. CIPHERTEXT carries the
// 16-byte GCM authentication tag at its end.
//
// # Concurrency
//
// A SymmetricKey is immutable after creation. Encrypt, Decrypt, Pack and
// Unpack keep no state and may be called from any number of goroutines.
//
// # Security Considerations
//
// A new random IV is drawn for every Encrypt call; IVs are never derived
// or reused. Decrypt never returns partial plaintext: when the tag does not
// verify the result is nil and the error is ErrAuthentication.
package secrets
