package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	svc.SetJWTSecret("test-secret")
	// Token expiry is checked against the wall clock on parse.
	svc.now = time.Now

	user, err := svc.Register("asha", "asha@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("registered user has no id")
	}
	if user.PasswordHash == "s3cret" {
		t.Fatal("password stored in clear")
	}

	tokenString, err := svc.Login("asha", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("token subject = %q, want user id %q", claims.Subject, user.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	svc.SetJWTSecret("test-secret")

	if _, err := svc.Register("asha", "asha@example.com", "s3cret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login("asha", "wrong"); err == nil {
		t.Fatal("login with wrong password succeeded")
	}
	if _, err := svc.Login("nobody", "s3cret"); err == nil {
		t.Fatal("login for unknown user succeeded")
	}
}
