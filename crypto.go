// crypto.go -- the encryption envelope: SHA-256 key derivation, a
// double-SHA256 key-verification token, and whole-body AES-256-CBC.
//
// Known discrepancy (see SPEC_FULL.md and original_source/tests/wfld.rs):
// some sibling implementations of this format hash the UTF-8 *string*
// representation of the password rather than its raw UTF-8 bytes. For
// ASCII passwords the two are identical; this package always hashes
// the raw UTF-8 bytes, per spec.
package hssp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
)

// deriveKey computes the AES-256 key from a password: SHA-256 of its
// UTF-8 bytes.
func deriveKey(password string) [32]byte {
	return sha256.Sum256([]byte(password))
}

// keyVerificationHash computes the header's key-hash field: a second
// SHA-256 over the derived key, letting a reader check a password
// without decrypting the body.
func keyVerificationHash(key [32]byte) [32]byte {
	return sha256.Sum256(key[:])
}

// pkcs7Pad pads data to a multiple of blockSize per PKCS#7.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad strips PKCS#7 padding. If the padding is malformed (as
// can happen on a corrupted, but still block-aligned, body) it
// returns the data unchanged rather than erroring: a corrupt body is
// not a parse failure anywhere else in this package, and this keeps
// that property here too.
func pkcs7Unpad(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) || padLen > aes.BlockSize {
		return data
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return data
		}
	}
	return data[:len(data)-padLen]
}

// encryptBody encrypts the whole plaintext body as one AES-256-CBC
// stream under key/iv, PKCS#7-padding it to the cipher's block size.
func encryptBody(key [32]byte, iv [16]byte, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))

	mode := cipher.NewCBCEncrypter(block, iv[:])
	mode.CryptBlocks(ciphertext, padded)

	return ciphertext, nil
}

// decryptBody decrypts a whole AES-256-CBC body under key/iv and
// strips the PKCS#7 padding.
func decryptBody(key [32]byte, iv [16]byte, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 {
		return nil, nil
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrBadCiphertext
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	plain := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv[:])
	mode.CryptBlocks(plain, ciphertext)

	return pkcs7Unpad(plain), nil
}
