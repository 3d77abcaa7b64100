package usecase

import (
	"errors"
	"testing"
)

func TestNewRegisterRequest(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  bool
	}{
		{"valid", "zhiyu", "zhiyu@example.com", "AbC123@x", false},
		{"short username", "ab", "zhiyu@example.com", "AbC123@x", true},
		{"bad email", "zhiyu", "zhiyu@example", "AbC123@x", true},
		{"weak password", "zhiyu", "zhiyu@example.com", "password", true},
		{"password too long", "zhiyu", "zhiyu@example.com", "AbCdEfGhIjKl12345678$", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRegisterRequest(tt.username, "", tt.email, tt.password)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got request %+v", req)
				}
				var badRequest *BadRequestError
				if !errors.As(err, &badRequest) {
					t.Fatalf("expected BadRequestError, got %T", err)
				}
				if badRequest.Reason != "Invalid username, email or password" {
					t.Fatalf("unexpected reason: %q", badRequest.Reason)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Username != tt.username {
				t.Fatalf("unexpected username: %q", req.Username)
			}
		})
	}
}

func TestNewRegisterRequestDefaultsNickname(t *testing.T) {
	req, err := NewRegisterRequest("zhiyu", "", "zhiyu@example.com", "AbC123@x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Nickname != "zhiyu" {
		t.Fatalf("expected nickname to default to username, got %q", req.Nickname)
	}
}

func TestNewUserUpdateRequestDropsUnknownKeys(t *testing.T) {
	req, err := NewUserUpdateRequest(1, map[string]string{
		"nickname": "zy",
		"shoes":    "47",
	}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Nickname == nil || *req.Nickname != "zy" {
		t.Fatalf("expected nickname to survive filtering, got %+v", req)
	}
	if req.Username != nil || req.Email != nil || req.Password != "" {
		t.Fatalf("unexpected fields populated: %+v", req)
	}
}

func TestNewUserUpdateRequestEmptyAfterFiltering(t *testing.T) {
	_, err := NewUserUpdateRequest(1, map[string]string{"shoes": "47"}, false)
	var badRequest *BadRequestError
	if !errors.As(err, &badRequest) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
	if badRequest.Reason != "No valid fields" {
		t.Fatalf("unexpected reason: %q", badRequest.Reason)
	}
}

func TestNewUserUpdateRequestProtectedFieldWithoutFreshToken(t *testing.T) {
	for _, field := range []string{"username", "email", "password"} {
		_, err := NewUserUpdateRequest(1, map[string]string{field: "anything"}, false)
		var badRequest *BadRequestError
		if !errors.As(err, &badRequest) {
			t.Fatalf("field %q: expected BadRequestError, got %v", field, err)
		}
		if badRequest.Reason != "No access to update protected field" {
			t.Fatalf("field %q: unexpected reason: %q", field, badRequest.Reason)
		}
	}
}

func TestNewUserUpdateRequestProtectedValidation(t *testing.T) {
	if _, err := NewUserUpdateRequest(1, map[string]string{"email": "not-an-email"}, true); err == nil {
		t.Fatal("expected invalid email to be rejected")
	}
	if _, err := NewUserUpdateRequest(1, map[string]string{"password": "weak"}, true); err == nil {
		t.Fatal("expected weak password to be rejected")
	}
	if _, err := NewUserUpdateRequest(1, map[string]string{"username": "ab"}, true); err == nil {
		t.Fatal("expected short username to be rejected")
	}

	req, err := NewUserUpdateRequest(1, map[string]string{
		"username": "zhiyu2",
		"email":    "zhiyu2@example.com",
		"password": "AbC123@x",
	}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Username == nil || *req.Username != "zhiyu2" {
		t.Fatalf("unexpected username: %+v", req.Username)
	}
	if !req.HasPassword() {
		t.Fatal("expected password change to be present")
	}
}

func TestNewUserUpdateRequestRejectsInvalidUserID(t *testing.T) {
	if _, err := NewUserUpdateRequest(0, map[string]string{"nickname": "zy"}, false); err == nil {
		t.Fatal("expected invalid user id to be rejected")
	}
}
