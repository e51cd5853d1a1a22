package pairing

import "errors"

// ErrInvalidToken токен не найден, истек или уже использован.
// Причина намеренно не уточняется.
var ErrInvalidToken = errors.New("invalid or expired pairing token")
