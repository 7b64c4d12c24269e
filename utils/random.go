package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RequestID returns a random id attached to every outgoing clinic API
// request, so a failed call can be matched against backend logs.
func RequestID() string {
	byt := make([]byte, 8)
	if _, err := rand.Read(byt); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; an empty
		// request id only degrades traceability.
		return ""
	}
	return fmt.Sprintf("req_%s", hex.EncodeToString(byt))
}

// GenerateCode returns n random bytes as a hex string. Used for station
// client ids on the realtime channel.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return hex.EncodeToString(byt), nil
}
