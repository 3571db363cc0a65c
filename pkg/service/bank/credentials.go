package bank

// CredentialService hashes and verifies customer passwords. Tokens are
// opaque to the bank core; it stores and forwards them without ever
// inspecting their contents.
type CredentialService interface {
	Hash(password string) (string, error)
	Verify(password, token string) bool
}
