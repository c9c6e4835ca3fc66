package auth

import (
	"testing"
	"time"

	"github.com/emre/collabhub/internal/app/models"
)

func testService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 720 * time.Hour,
		TokenIssuer:     "collabhub.test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := testService(time.Hour)

	user := &models.User{
		ID:          42,
		Email:       "ada@collabhub.app",
		DisplayName: "Ada",
		GlobalRole:  models.GlobalRoleAdmin,
	}

	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}
	if accessToken == "" || refreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}
	if expiresIn != 3600 {
		t.Errorf("expiresIn = %d, want 3600", expiresIn)
	}
	if refreshExpiresIn != int((720 * time.Hour).Seconds()) {
		t.Errorf("refreshExpiresIn = %d, want %d", refreshExpiresIn, int((720*time.Hour).Seconds()))
	}

	claims, err := svc.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("claims.UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "ada@collabhub.app" {
		t.Errorf("claims.Email = %q, want %q", claims.Email, "ada@collabhub.app")
	}
	if !claims.IsAdmin {
		t.Error("expected isAdmin claim for platform admin user")
	}
	if claims.Issuer != "collabhub.test" {
		t.Errorf("claims.Issuer = %q, want %q", claims.Issuer, "collabhub.test")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := testService(-time.Minute)

	user := &models.User{ID: 1, Email: "ada@collabhub.app", DisplayName: "Ada"}
	accessToken, _, _, _, err := svc.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	if _, err := svc.ValidateToken(accessToken); err != ErrExpiredToken {
		t.Errorf("ValidateToken error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := testService(time.Hour)
	verifier := NewJWTService(JWTConfig{
		SecretKey:       "a-different-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "collabhub.test",
	})

	user := &models.User{ID: 1, Email: "ada@collabhub.app", DisplayName: "Ada"}
	accessToken, _, _, _, err := issuer.GenerateTokenPair(user)
	if err != nil {
		t.Fatalf("GenerateTokenPair returned error: %v", err)
	}

	if _, err := verifier.ValidateToken(accessToken); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer prefix", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "raw token", header: "abc.def.ghi", want: "abc.def.ghi"},
		{name: "empty header", header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateAndExtractClaimsRejectsEmpty(t *testing.T) {
	svc := testService(time.Hour)
	if _, err := svc.ValidateAndExtractClaims(""); err != ErrInvalidToken {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPassword(hashed, "correct horse battery staple") {
		t.Error("expected password to verify against its own hash")
	}
	if CheckPassword(hashed, "wrong password") {
		t.Error("expected mismatched password to fail verification")
	}
}
