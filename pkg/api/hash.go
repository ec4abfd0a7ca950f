package api

import (
	"crypto/md5" //nolint:gosec // the coupon service expects an MD5 password digest
	"encoding/hex"
)

// HashPassword returns the lowercase hex MD5 digest of a plaintext password.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
