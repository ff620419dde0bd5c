// Package auth mints and verifies device signatures: JWTs bound to an
// employee/device pair, issued at activation and presented as "sig" on
// every later relay call.
package auth

import (
	"time"

	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the employee/device binding.
type Claims struct {
	jwt.RegisteredClaims
	EmployeeID string
	DeviceID   string
}

// GenerateSig mints a device signature for an employee/device pair.
func GenerateSig(employeeID, deviceID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		EmployeeID: employeeID,
		DeviceID:   deviceID,
	})

	return token.SignedString(secretKey)
}

// ParseSig verifies a device signature and returns the employee and device
// it was minted for. Invalid, expired or foreign-key tokens return
// common.ErrInvalidToken.
func ParseSig(sig string, secretKey []byte) (employeeID, deviceID string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(sig, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", "", common.ErrInvalidToken
	}

	return claims.EmployeeID, claims.DeviceID, nil
}
