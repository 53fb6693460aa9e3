package domain

// Zero overwrites b with zeros. Used on derived keys and decrypted
// plaintext once they are no longer needed.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
