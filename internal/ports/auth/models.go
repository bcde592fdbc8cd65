package auth

// Claims representa la información extraída del token.
// UserID es el responsable que queda registrado en ledger y auditoría.
type Claims struct {
	UserID string
	Email  string
}
