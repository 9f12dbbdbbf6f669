package services

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/securebank/payment-core/internal/domain"
	"golang.org/x/crypto/pbkdf2"
)

const artifactType = "securebank_payment"
const artifactVersion = "1.0"
const artifactHashLength = 16

var codecKeySalt = []byte("securebank-payment-token-v1")

// TokenPayload is the signed, encrypted body of a QR artifact. Amount is
// a decimal string; empty means the payer supplies the amount.
type TokenPayload struct {
	PaymentID     string `json:"payment_id"`
	ReceiverID    string `json:"receiver_id"`
	ReceiverAlias string `json:"receiver_alias,omitempty"`
	Amount        string `json:"amount,omitempty"`
	Description   string `json:"description"`
	Timestamp     string `json:"timestamp"`
	ExpiresAt     string `json:"expires_at"`
	Nonce         string `json:"nonce"`
	Signature     string `json:"signature,omitempty"`
}

type artifactEnvelope struct {
	Type    string `json:"type"`
	Version string `json:"version"`
	Data    string `json:"data"`
	Hash    string `json:"hash"`
}

// TokenCodec builds and verifies distributable payment artifacts. Three
// independent layers must hold on the way back in: the ciphertext
// integrity digest, the payload signature, and the embedded expiry.
// The codec owns one symmetric key for its lifetime.
type TokenCodec struct {
	key []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{key: pbkdf2.Key([]byte(secret), codecKeySalt, 4096, 32, sha256.New)}
}

// Sign computes the keyed signature over the canonical serialization of
// the payload, excluding the signature field itself.
func (c *TokenCodec) Sign(payload TokenPayload) (string, error) {
	payload.Signature = ""
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalize token payload: %w", err)
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Encode signs and encrypts the payload and wraps the ciphertext in the
// versioned envelope. The returned artifact is an opaque string any
// transport may carry unchanged; the short hash is the ciphertext
// integrity digest also stored against the token record.
func (c *TokenCodec) Encode(payload TokenPayload) (artifact string, shortHash string, err error) {
	signature, err := c.Sign(payload)
	if err != nil {
		return "", "", err
	}
	payload.Signature = signature

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("marshal token payload: %w", err)
	}

	ciphertext, err := c.encrypt(plaintext)
	if err != nil {
		return "", "", err
	}

	envelope := artifactEnvelope{
		Type:    artifactType,
		Version: artifactVersion,
		Data:    ciphertext,
		Hash:    ciphertextDigest(ciphertext),
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return "", "", fmt.Errorf("marshal artifact envelope: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), envelope.Hash, nil
}

// Decode verifies an artifact layer by layer and returns its payload.
// Every verification failure maps to a domain token error; decryption
// problems of any kind are validation failures, never a crash.
func (c *TokenCodec) Decode(artifact string, now time.Time) (TokenPayload, error) {
	raw, err := base64.StdEncoding.DecodeString(artifact)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("%w: artifact is not valid base64", domain.ErrTokenIntegrity)
	}

	var envelope artifactEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return TokenPayload{}, fmt.Errorf("%w: artifact envelope is malformed", domain.ErrTokenIntegrity)
	}
	if envelope.Type != artifactType {
		return TokenPayload{}, fmt.Errorf("%w: unexpected artifact type", domain.ErrTokenIntegrity)
	}
	if envelope.Hash != ciphertextDigest(envelope.Data) {
		return TokenPayload{}, fmt.Errorf("%w: ciphertext digest mismatch", domain.ErrTokenIntegrity)
	}

	plaintext, err := c.decrypt(envelope.Data)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("%w: decryption failed", domain.ErrTokenIntegrity)
	}

	var payload TokenPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return TokenPayload{}, fmt.Errorf("%w: payload is malformed", domain.ErrTokenIntegrity)
	}

	expected, err := c.Sign(payload)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("%w: signature check failed", domain.ErrTokenIntegrity)
	}
	if !hmac.Equal([]byte(expected), []byte(payload.Signature)) {
		return TokenPayload{}, fmt.Errorf("%w: invalid signature", domain.ErrTokenIntegrity)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, payload.ExpiresAt)
	if err != nil {
		return TokenPayload{}, fmt.Errorf("%w: expiry timestamp is malformed", domain.ErrTokenIntegrity)
	}
	if now.After(expiresAt) {
		return payload, domain.ErrTokenExpired
	}

	return payload, nil
}

func (c *TokenCodec) encrypt(plaintext []byte) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("initialize cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate initialization vector: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(append(iv, ciphertext...)), nil
}

func (c *TokenCodec) decrypt(encoded string) ([]byte, error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("ciphertext is not valid base64")
	}
	if len(combined) < aes.BlockSize || (len(combined)-aes.BlockSize)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext has invalid length")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("initialize cipher: %w", err)
	}

	iv := combined[:aes.BlockSize]
	ciphertext := combined[aes.BlockSize:]
	if len(ciphertext) == 0 {
		return nil, fmt.Errorf("ciphertext is empty")
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

func ciphertextDigest(ciphertext string) string {
	sum := sha256.Sum256([]byte(ciphertext))
	return hex.EncodeToString(sum[:])[:artifactHashLength]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length")
	}
	padding := int(data[len(data)-1])
	if padding < 1 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}
