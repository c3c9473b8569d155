package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher bcrypt 哈希，Cost 为 0 时使用默认值
type PasswordHasher struct {
	Cost int
}

// Hash 生成哈希
func (h PasswordHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Matches 校验明文与哈希
func (h PasswordHasher) Matches(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
