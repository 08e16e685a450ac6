package main

import (
	"crypto/rsa"
	"os"
	"time"

	"go-registration-portal/models"

	"github.com/golang-jwt/jwt/v4"
)

// ReceiptCreator signs a registration receipt the user can keep as proof
// that their submission was accepted.
type ReceiptCreator interface {
	CreateRegistrationReceipt(submissionId string, profile models.StoredProfile) (receipt string, err error)
}

func NewReceiptCreator(privateKeyPath string, issuerId string) (*DefaultReceiptCreator, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)

	if err != nil {
		return nil, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)

	if err != nil {
		return nil, err
	}

	return &DefaultReceiptCreator{
		issuerId:   issuerId,
		privateKey: privateKey,
	}, nil
}

// NewReceiptCreatorFromKey builds a creator around an in-memory key.
func NewReceiptCreatorFromKey(privateKey *rsa.PrivateKey, issuerId string) *DefaultReceiptCreator {
	return &DefaultReceiptCreator{
		issuerId:   issuerId,
		privateKey: privateKey,
	}
}

type DefaultReceiptCreator struct {
	privateKey *rsa.PrivateKey
	issuerId   string
}

type receiptClaims struct {
	jwt.RegisteredClaims
	Profile map[string]string `json:"profile"`
}

func (rc *DefaultReceiptCreator) CreateRegistrationReceipt(submissionId string, profile models.StoredProfile) (string, error) {
	attributes := map[string]string{
		"fullName":    profile.FullName,
		"username":    profile.UserName,
		"email":       profile.Email,
		"city":        profile.City,
		"userType":    profile.UserType,
		"dateOfBirth": profile.DateOfBirth,
	}

	now := time.Now()
	claims := receiptClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    rc.issuerId,
			Subject:   submissionId,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.AddDate(1, 0, 0)), // 1 year from now
		},
		Profile: attributes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(rc.privateKey)
}
