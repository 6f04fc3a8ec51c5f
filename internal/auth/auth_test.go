package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/pairchat/internal/store"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/metadata"
)

func testService(t *testing.T) (*Service, *Authenticator) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	authn := NewAuthenticator("secret", "pairchat", time.Hour)
	return NewService(db, authn, zaptest.NewLogger(t)), authn
}

func validRegistration() Registration {
	return Registration{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Phone:           "12345678",
		Password:        "hunter22",
		ConfirmPassword: "hunter22",
	}
}

func TestRegistrationValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
		field  string
	}{
		{"valid", func(*Registration) {}, ""},
		{"missing name", func(r *Registration) { r.FullName = "" }, "form"},
		{"missing confirmation", func(r *Registration) { r.ConfirmPassword = "" }, "form"},
		{"email without at", func(r *Registration) { r.Email = "ada.example.com" }, "email"},
		{"email without dot", func(r *Registration) { r.Email = "ada@example" }, "email"},
		{"email with space", func(r *Registration) { r.Email = "a da@example.com" }, "email"},
		{"phone too short", func(r *Registration) { r.Phone = "1234567" }, "phone"},
		{"phone with letters", func(r *Registration) { r.Phone = "1234567a" }, "phone"},
		{"phone too long", func(r *Registration) { r.Phone = "123456789" }, "phone"},
		{"passwords differ", func(r *Registration) { r.ConfirmPassword = "hunter23" }, "confirmPassword"},
		{"password short", func(r *Registration) { r.Password, r.ConfirmPassword = "abc", "abc" }, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)
			err := r.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, authn := testService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	if profile.ID == "" {
		t.Fatal("no participant id assigned")
	}

	if _, err := svc.Register(ctx, validRegistration()); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("second register err = %v, want ErrEmailTaken", err)
	}

	token, got, err := svc.Login(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != profile.ID {
		t.Errorf("login id = %q, want stable id %q", got.ID, profile.ID)
	}
	claims, err := authn.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.ParticipantID() != profile.ID || claims.FullName != "Ada Lovelace" {
		t.Errorf("claims = %+v", claims)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, _, err := svc.Login(ctx, "bob@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
	var verr *ValidationError
	if _, _, err := svc.Login(ctx, "not-an-email", "x"); !errors.As(err, &verr) {
		t.Errorf("malformed email err = %v, want ValidationError", err)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	authn := NewAuthenticator("secret", "pairchat", time.Minute)
	token, err := authn.GenerateToken("u1", "U One")
	if err != nil {
		t.Fatal(err)
	}

	other := NewAuthenticator("other-secret", "pairchat", time.Minute)
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign signature err = %v, want ErrInvalidToken", err)
	}

	authn.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := authn.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired err = %v, want ErrExpiredToken", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMiddleware(t *testing.T) {
	authn := NewAuthenticator("secret", "pairchat", time.Minute)
	token, _ := authn.GenerateToken("u1", "")

	var seen string
	h := authn.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ParticipantFrom(r.Context())
	}))

	tests := []struct {
		name   string
		target string
		header string
		code   int
	}{
		{"header", "/x", "Bearer " + token, http.StatusOK},
		{"query", "/x?access_token=" + token, "", http.StatusOK},
		{"missing", "/x", "", http.StatusUnauthorized},
		{"garbage", "/x", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			if tt.code == http.StatusOK && seen != "u1" {
				t.Errorf("participant = %q, want u1", seen)
			}
		})
	}
}

func TestAuthenticateMetadata(t *testing.T) {
	authn := NewAuthenticator("secret", "pairchat", time.Minute)
	token, _ := authn.GenerateToken("u1", "")

	md, err := TokenCredentials(token).GetRequestMetadata(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.New(md))
	ctx, err = authn.authenticate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if id, ok := ParticipantFrom(ctx); !ok || id != "u1" {
		t.Errorf("participant = %q, %v", id, ok)
	}

	if _, err := authn.authenticate(context.Background()); err == nil {
		t.Error("missing metadata accepted")
	}
}
