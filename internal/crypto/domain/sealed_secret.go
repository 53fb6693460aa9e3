package domain

// SealedSecret is the at-rest form of a credential: the standard base64
// encoding of nonce || ciphertext || tag. It is opaque to everything but the
// vault and is replaced wholesale, never edited.
type SealedSecret string

// String returns the encoded form.
func (s SealedSecret) String() string {
	return string(s)
}

// IsZero reports whether nothing has been sealed.
func (s SealedSecret) IsZero() bool {
	return s == ""
}
