// Package test provides utilities for testing. Do not import this into non-test code.
package test

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomString return a random alphanumeric string with length 10.
func RandomString() string {
	return RandomStringWithLen(10)
}

// RandomStringWithLen returns a random alphanumeric string with a specified length.
func RandomStringWithLen(length int) string {
	var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	s := make([]rune, length)
	for i := range s {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		s[i] = letters[n.Int64()]
	}
	return string(s)
}

// utrCheckDigit holds the modulus 11 remainder to check character mapping
// published for unique taxpayer references.
var utrCheckDigit = [11]byte{'2', '1', '9', '8', '7', '6', '5', '4', '3', '2', '1'}

// RandomUTR returns a random unique taxpayer reference with a valid check character.
func RandomUTR() string {
	weights := []int{6, 7, 8, 9, 10, 5, 4, 3, 2}
	digits := make([]byte, 9)
	sum := 0
	for i := range digits {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		digits[i] = byte('0' + n.Int64())
		sum += weights[i] * int(n.Int64())
	}
	return string(utrCheckDigit[sum%11]) + string(digits)
}

// RandomAccountsOfficeReference returns a random well formed accounts office reference.
func RandomAccountsOfficeReference() string {
	office, _ := rand.Int(rand.Reader, big.NewInt(1000))
	serial, _ := rand.Int(rand.Reader, big.NewInt(10000000))
	check, _ := rand.Int(rand.Reader, big.NewInt(10))
	return fmt.Sprintf("%03dPA%07d%d", office.Int64(), serial.Int64(), check.Int64())
}
