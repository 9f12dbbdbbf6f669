package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrDuplicateRecord = errors.New("Record already exists")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrRiskBlocked = errors.New("Transaction blocked due to suspicious activity")
var ErrTokenExpired = errors.New("Payment token has expired")
var ErrTokenAlreadyUsed = errors.New("Payment token has already been used")
var ErrTokenIntegrity = errors.New("Payment token integrity check failed")
var ErrConcurrencyConflict = errors.New("Lost race for an exclusive record")
var ErrPersistence = errors.New("Persistence commit failed")
