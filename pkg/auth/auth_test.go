package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestBasicClientSetsAuthorization(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer ts.Close()

	client := NewBasicClient("secret-key", time.Second)
	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if got != "Basic secret-key" {
		t.Errorf("Expected 'Basic secret-key', got %q", got)
	}
}

func TestLocalRedirect(t *testing.T) {
	cases := map[string]string{
		"urn:ietf:wg:oauth:2.0:oob":       "http://localhost:6789/oauth2callback",
		"http://localhost":                "http://localhost:6789",
		"http://localhost:8080/cb":        "http://localhost:6789/cb",
		"http://127.0.0.1:6789/cb":        "http://127.0.0.1:6789/cb",
		"https://example.com/oauth/ready": "https://example.com/oauth/ready",
	}
	for in, want := range cases {
		if got := localRedirect(in); got != want {
			t.Errorf("localRedirect(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", TokenFile)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}

	if err := saveToken(path, tok); err != nil {
		t.Fatalf("saveToken failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile failed: %v", err)
	}
	if got.AccessToken != "a" || got.RefreshToken != "r" {
		t.Errorf("Unexpected token %+v", got)
	}
}

func TestGetClientWithoutToken(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", xdgAppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	secrets := `{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	if err := os.WriteFile(filepath.Join(dir, ClientSecretsFile), []byte(secrets), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := GetClient(t.Context(), CalendarScopes)
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}
}

type countingSource struct {
	tok *oauth2.Token
}

func (c *countingSource) Token() (*oauth2.Token, error) { return c.tok, nil }

func TestSavingSourcePersistsRefresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), TokenFile)
	old := &oauth2.Token{AccessToken: "old"}
	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "r"}

	s := &savingSource{base: &countingSource{tok: fresh}, path: path, last: old}
	if _, err := s.Token(); err != nil {
		t.Fatal(err)
	}
	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("Expected refreshed token on disk: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("Expected saved access token 'new', got %q", got.AccessToken)
	}
}
