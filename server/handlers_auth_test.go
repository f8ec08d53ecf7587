package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/securenotes/auth-service/auth"
	"github.com/securenotes/auth-service/internal/config"
	"github.com/securenotes/auth-service/mfa"
	fakenoterepo "github.com/securenotes/auth-service/notes/repofake"
	"github.com/securenotes/auth-service/server"
	"github.com/securenotes/auth-service/token"
	fakeuserrepo "github.com/securenotes/auth-service/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	secretStr        = "test-signing-secret"
	issuer           = "SecureNotes"
	testUsername     = "alice"
	testUserPassword = "p@ss1234"
)

type testFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	tokens   *token.Manager
	ts       *httptest.Server
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	nr := fakenoterepo.NewFakeNoteRepo()
	tokens := token.New(token.NewHMACSigner(secretStr), token.WithIssuer(issuer))
	authService, err := auth.NewService(auth.Repos{Users: ur}, mfa.New(issuer), tokens, auth.WithBcryptCost(4))
	require.NoError(t, err)

	srv, err := server.New(config.New(), authService, tokens, nr)
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testFixture{userRepo: ur, tokens: tokens, ts: ts}
}

func (f *testFixture) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, f.ts.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (f *testFixture) signupTestUser(t *testing.T) {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/api/signup", map[string]string{
		"username": testUsername,
		"password": testUserPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Contains(t, body, "qrCode")
}

func (f *testFixture) currentCode(t *testing.T, username string) string {
	t.Helper()
	user, err := f.userRepo.GetByUsername(context.Background(), username)
	require.NoError(t, err)

	code, err := totp.GenerateCodeCustom(user.TOTPSecret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

// loginWithMFA walks the full two-step login and returns both tokens.
func (f *testFixture) loginWithMFA(t *testing.T) (accessToken, mfaToken string) {
	t.Helper()

	resp, body := f.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": testUsername,
		"password": testUserPassword,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])

	resp, body = f.do(t, http.MethodPost, "/api/verify-mfa-login", map[string]string{
		"username": testUsername,
		"token":    f.currentCode(t, testUsername),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["verified"])

	accessToken, _ = body["token"].(string)
	mfaToken, _ = body["mfaToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, mfaToken)
	return accessToken, mfaToken
}

func TestSignupHandler(t *testing.T) {
	f := setupTestFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/signup", map[string]string{
		"username": testUsername,
		"password": testUserPassword,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	qrCode, _ := body["qrCode"].(string)
	require.True(t, strings.HasPrefix(qrCode, "data:image/png;base64,"))

	t.Run("duplicate username", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/api/signup", map[string]string{
			"username": testUsername,
			"password": testUserPassword,
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "User already exists", body["message"])
	})

	t.Run("weak password", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/api/signup", map[string]string{
			"username": "bob",
			"password": "short",
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing username", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/api/signup", map[string]string{
			"password": testUserPassword,
		}, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestVerifyMFASetupHandler(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)

	t.Run("correct code", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/api/verify-mfa-setup", map[string]string{
			"username": testUsername,
			"token":    f.currentCode(t, testUsername),
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, true, body["verified"])
	})

	t.Run("wrong code", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/api/verify-mfa-setup", map[string]string{
			"username": testUsername,
			"token":    "000000",
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, false, body["verified"])
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/api/verify-mfa-setup", map[string]string{
			"username": "nobody",
			"token":    "123456",
		}, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestResendQRHandler(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)

	resp, body := f.do(t, http.MethodGet, "/api/resend-qr/"+testUsername, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	qrCode, _ := body["qrCode"].(string)
	require.True(t, strings.HasPrefix(qrCode, "data:image/png;base64,"))

	t.Run("unknown user", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodGet, "/api/resend-qr/nobody", nil, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLoginHandler(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)

	resp, body := f.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": testUsername,
		"password": testUserPassword,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	require.NotContains(t, body, "token")

	t.Run("wrong password", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/api/login", map[string]string{
			"username": testUsername,
			"password": "wrong-password",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, false, body["success"])
	})

	t.Run("unknown user gets the same response", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/api/login", map[string]string{
			"username": "nobody",
			"password": testUserPassword,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, false, body["success"])
	})
}

func TestVerifyMFALoginHandler(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)

	t.Run("wrong code issues no tokens", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/api/verify-mfa-login", map[string]string{
			"username": testUsername,
			"token":    "000000",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, false, body["verified"])
		require.NotContains(t, body, "token")
	})

	t.Run("correct code issues both tokens", func(t *testing.T) {
		accessToken, mfaToken := f.loginWithMFA(t)

		_, err := f.tokens.VerifyAccessToken(accessToken)
		require.NoError(t, err)
		_, err = f.tokens.VerifyMFAToken(mfaToken)
		require.NoError(t, err)
	})
}

func TestValidateMFAHandler(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)
	_, mfaToken := f.loginWithMFA(t)

	t.Run("valid token", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/api/validate-mfa", nil, map[string]string{
			"x-mfa-token": mfaToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, true, body["valid"])
	})

	t.Run("missing header", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/api/validate-mfa", nil, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, false, body["valid"])
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/api/validate-mfa", nil, map[string]string{
			"x-mfa-token": "not.a.jwt",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, false, body["valid"])
	})
}

func TestSkipMFALoginHandler(t *testing.T) {
	f := setupTestFixture(t)
	f.signupTestUser(t)
	_, mfaToken := f.loginWithMFA(t)

	t.Run("valid token and password", func(t *testing.T) {
		resp, body := f.do(t, http.MethodPost, "/api/skip-mfa-login", map[string]string{
			"username": testUsername,
			"password": testUserPassword,
			"mfaToken": mfaToken,
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, true, body["verified"])

		accessToken, _ := body["token"].(string)
		_, err := f.tokens.VerifyAccessToken(accessToken)
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/api/skip-mfa-login", map[string]string{
			"username": testUsername,
			"password": "wrong-password",
			"mfaToken": mfaToken,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-1 * time.Hour)
		backdated := token.New(token.NewHMACSigner(secretStr),
			token.WithIssuer(issuer),
			token.WithNowFunc(func() time.Time { return past }),
		)
		user, err := f.userRepo.GetByUsername(context.Background(), testUsername)
		require.NoError(t, err)
		expiredToken, err := backdated.IssueMFAToken(user)
		require.NoError(t, err)

		resp, body := f.do(t, http.MethodPost, "/api/skip-mfa-login", map[string]string{
			"username": testUsername,
			"password": testUserPassword,
			"mfaToken": expiredToken,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Invalid or expired MFA token", body["message"])
	})
}
