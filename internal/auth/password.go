package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt digest of a plaintext password. bcrypt
// embeds a per-call random salt, so two hashes of the same password
// differ.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the stored digest. A
// malformed digest also comes back as an error.
func CheckPassword(plain, digest string) error {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
}
