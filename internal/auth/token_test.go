package auth

import (
	"testing"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	role := domain.RoleHOD

	token, _, err := tm.GenerateToken("stf-1", domain.SubjectTypeStaff, &role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.SubjectID != "stf-1" || claims.Subject != domain.SubjectTypeStaff {
		t.Errorf("claims = %+v", claims)
	}
	if claims.Role == nil || *claims.Role != domain.RoleHOD {
		t.Errorf("role claim = %v, want %s", claims.Role, domain.RoleHOD)
	}
}

func TestTokenStudentHasNoRole(t *testing.T) {
	tm := NewTokenManager("secret", 60)

	token, _, err := tm.GenerateToken("std-1", domain.SubjectTypeStudent, nil)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Role != nil {
		t.Errorf("student token carries role %v", *claims.Role)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	other := NewTokenManager("not-the-secret", 60)

	token, _, err := tm.GenerateToken("std-1", domain.SubjectTypeStudent, nil)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := other.ParseToken(token); err == nil {
		t.Error("token accepted with wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pw", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := ComparePassword(hash, "s3cret-pw"); err != nil {
		t.Errorf("ComparePassword() rejected matching password: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Error("ComparePassword() accepted wrong password")
	}
}
