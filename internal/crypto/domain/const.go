package domain

// Frame layout of a SealedSecret before transport encoding:
//
//	| nonce (12 bytes) | ciphertext (len(plaintext) bytes) | tag (16 bytes) |
//
// The layout and field lengths are fixed. Changing any of them makes every
// previously sealed credential unreadable.
const (
	// KeySize is the length in bytes of a derived AES-256 key.
	KeySize = 32

	// NonceSize is the length in bytes of the random AES-GCM nonce that
	// prefixes every sealed frame.
	NonceSize = 12

	// TagSize is the length in bytes of the GCM authentication tag that
	// terminates every sealed frame.
	TagSize = 16

	// MinFrameSize is the smallest decodable frame (empty plaintext).
	MinFrameSize = NonceSize + TagSize

	// MinMasterSecretLength is the minimum number of characters accepted for
	// the master secret.
	MinMasterSecretLength = 32

	// DefaultKDFIterations is the PBKDF2 iteration count used to derive
	// per-user keys. Deployments may raise it, but sealed data is only
	// readable with the iteration count it was sealed with.
	DefaultKDFIterations = 100_000
)
