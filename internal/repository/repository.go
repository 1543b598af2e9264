// Package repository holds the errors shared by the storage backends.
package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
