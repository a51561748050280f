// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	otpAttemptLimit  = 5
	otpAttemptWindow = time.Hour
)

// GenerateSecureOTP returns a 6-digit code from crypto/rand
func GenerateSecureOTP() (string, error) {
	digits := make([]byte, 6)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// ValidateOTPAttempts counts code submissions per key in Redis and rejects
// once the hourly limit is hit. The counter expires with the window.
func ValidateOTPAttempts(key string, redis *redis.Client) error {
	counter := "otp_attempts:" + key
	attempts, err := redis.Incr(context.Background(), counter).Result()
	if err != nil {
		return err
	}
	if attempts == 1 {
		redis.Expire(context.Background(), counter, otpAttemptWindow)
	}
	if attempts > otpAttemptLimit {
		return errors.New("too many OTP attempts")
	}
	return nil
}
