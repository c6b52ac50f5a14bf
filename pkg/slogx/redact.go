package slogx

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of any attribute whose key names a secret.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"password":           {},
	"token":              {},
	"access_token":       {},
	"refresh_token":      {},
	"confirmation_token": {},
	"code":               {},
	"secret":             {},
	"authorization":      {},
}

// IsSensitiveKey reports whether values logged under key must never be written out.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}
