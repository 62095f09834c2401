/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 13:06:01
 * @LastEditTime: 2025-09-15 15:02:44
 * @LastEditors: 安知鱼
 */
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt 只处理前 72 字节
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("密码长度超过 72 字节")

// HashPassword 对密码进行哈希处理
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("密码加密失败: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash 验证密码哈希
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
