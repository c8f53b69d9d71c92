package repository

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrTicketStateConflict = errors.New("ticket state conflict")
	ErrSoldOut             = errors.New("sold out")
	ErrInsufficientBalance = errors.New("insufficient balance")
)
