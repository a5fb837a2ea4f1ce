package models

// Encryption parameters for the membership store
const (
	NonceSize  = 12
	KeySize    = 32
	Iterations = 100000
)
