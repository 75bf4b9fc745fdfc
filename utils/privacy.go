package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// HashData one-way hashes a sensitive value (email, phone, IP, location)
// with SHA-256 before storage. Hashes are unsalted so equal inputs always
// produce the same digest, which keeps exact-match queries possible.
func HashData(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// GenerateAnonymousID generates the stable pseudonymous identifier assigned
// at registration. It never changes and is never reused.
func GenerateAnonymousID() (string, error) {
	token, err := GenerateSecureToken(16)
	if err != nil {
		return "", err
	}
	return "ANON-" + token, nil
}

// GenerateOTP generates a 6-digit one-time code in [100000, 999999]
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateContactTraceToken generates the 32-hex-character encounter token
// shared between a booking and its contact event
func GenerateContactTraceToken() (string, error) {
	return GenerateSecureToken(16)
}

// GeneratePaymentReference builds a human-readable payment reference.
// Timestamp plus random suffix; global uniqueness is not enforced.
func GeneratePaymentReference() (string, error) {
	suffix, err := GenerateSecureToken(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%s-%s", time.Now().Format("20060102150405"), strings.ToUpper(suffix)), nil
}

// GenerateSecureToken generates a cryptographically secure random token of
// length bytes, hex encoded
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CardType determines the card network from the card number prefix.
// Display only, no authorization happens anywhere in this system.
func CardType(cardNumber string) string {
	switch {
	case strings.HasPrefix(cardNumber, "4"):
		return "Visa"
	case strings.HasPrefix(cardNumber, "5"):
		return "Mastercard"
	case strings.HasPrefix(cardNumber, "3"):
		return "American Express"
	default:
		return "Unknown"
	}
}

// CardLast4 returns the last four digits of a card number
func CardLast4(cardNumber string) string {
	if len(cardNumber) < 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
