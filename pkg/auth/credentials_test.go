package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	errs "twtimg/pkg/errors"
)

func TestCredentialManager(t *testing.T) {
	mockStore := NewMockStore()
	manager := NewManagerWithStores(mockStore)

	account := &Account{
		Name:      "work",
		APIKey:    "xvz1evFS4wEEPTGEFPHBog",
		APISecret: "L8qq9PZyRg6ieKGEKhZolGC0vJWLw8iEJ88DRdyOg",
	}

	if err := manager.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}
	if account.LastModified.IsZero() {
		t.Error("Store should stamp LastModified")
	}

	retrieved, err := manager.Retrieve("work")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.Credentials() != account.Credentials() {
		t.Errorf("Credentials mismatch: got %+v, want %+v", retrieved.Credentials(), account.Credentials())
	}

	accounts, err := manager.List()
	if err != nil {
		t.Errorf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected one account in list, got %d", len(accounts))
	}

	sanitized := SanitizeAccount(account)
	if sanitized.APIKey == account.APIKey || sanitized.APISecret == account.APISecret {
		t.Error("Key pair should be masked")
	}
	if sanitized.Name != account.Name {
		t.Error("Name should not be masked")
	}

	if err := manager.Delete("work"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if _, err := manager.Retrieve("work"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound after deletion, got %v", err)
	}
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
	if err := manager.Delete("work"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Deleting twice should report not found, got %v", err)
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager := NewManagerWithStores(NewMockStore())

	if err := manager.Store(&Account{APIKey: "k", APISecret: "s"}); err == nil {
		t.Error("Expected an error for a missing account name")
	}

	err := manager.Store(&Account{Name: "half", APIKey: "k"})
	if !errors.Is(err, errs.ErrConfidentialsNotSupplied) {
		t.Errorf("Expected ErrConfidentialsNotSupplied, got %v", err)
	}
}

func TestManagerFallsBackAcrossStores(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	working := NewMockStore()
	manager := NewManagerWithStores(broken, working)

	if err := manager.Store(&Account{Name: "a", APIKey: "k", APISecret: "s"}); err != nil {
		t.Fatalf("Store should fall through to the next store: %v", err)
	}
	if !working.Exists("a") {
		t.Error("Expected the second store to hold the account")
	}
}

func TestRetrieveDefault(t *testing.T) {
	t.Setenv(envAPIKey, "")
	t.Setenv(envAPISecret, "")

	store := NewMockStore()
	manager := NewManagerWithStores(store, NewEnvironmentStore())

	if _, err := manager.RetrieveDefault(); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound with nothing stored, got %v", err)
	}

	_ = store.Store(&Account{Name: "zeta", APIKey: "k2", APISecret: "s2"})
	_ = store.Store(&Account{Name: "alpha", APIKey: "k1", APISecret: "s1"})
	account, err := manager.RetrieveDefault()
	if err != nil {
		t.Fatal(err)
	}
	if account.Name != "alpha" {
		t.Errorf("Expected the first account by name, got %s", account.Name)
	}

	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envAPISecret, "env-secret")
	account, err = manager.RetrieveDefault()
	if err != nil {
		t.Fatal(err)
	}
	if account.Name != "env" || account.APIKey != "env-key" {
		t.Errorf("Environment credentials should win, got %+v", account)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	creds, err := LoadFile(write("ok.json", `{"api_key": "key", "api_secret": "secret"}`))
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if creds.APIKey != "key" || creds.APISecret != "secret" {
		t.Errorf("Unexpected credentials %+v", creds)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing secret", write("nosecret.json", `{"api_key": "key"}`)},
		{"empty key", write("emptykey.json", `{"api_key": "", "api_secret": "secret"}`)},
		{"not json", write("bad.json", `api_key=key`)},
		{"no file", filepath.Join(dir, "absent.json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			if !errors.Is(err, errs.ErrConfidentialsNotSupplied) {
				t.Errorf("Expected ErrConfidentialsNotSupplied, got %v", err)
			}
			if errs.TypeOf(err) != errs.ErrorTypeConfig {
				t.Errorf("Expected a config error, got %s", errs.TypeOf(err))
			}
		})
	}
}

func TestEncryptedFileStore(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(passphraseEnv, "")
	path := filepath.Join(tempDir, "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	account := &Account{Name: "main", APIKey: "plain-api-key", APISecret: "plain-api-secret"}
	if err := store.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}
	if err := store.Store(&Account{Name: "other", APIKey: "k", APISecret: "s"}); err != nil {
		t.Fatalf("Failed to store second account: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if strings.Contains(string(content), "plain-api-secret") {
		t.Error("Secret stored in plain text")
	}
	if _, err := os.Stat(filepath.Join(tempDir, ".passphrase")); err != nil {
		t.Errorf("Expected a generated passphrase file: %v", err)
	}

	// A second store over the same directory reads the same data
	reopened, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	retrieved, err := reopened.Retrieve("main")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.APISecret != account.APISecret {
		t.Errorf("Secret mismatch after reopen: %s", retrieved.APISecret)
	}

	accounts, _ := reopened.List()
	if len(accounts) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(accounts))
	}

	if err := reopened.Delete("main"); err != nil {
		t.Fatal(err)
	}
	if err := reopened.Delete("other"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected the file to be removed with the last account")
	}
	if _, err := reopened.Retrieve("main"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(passphraseEnv, "first")
	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Store(&Account{Name: "main", APIKey: "k", APISecret: "s"}); err != nil {
		t.Fatal(err)
	}

	t.Setenv(passphraseEnv, "second")
	other, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Retrieve("main"); err == nil || errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected a decryption failure, got %v", err)
	}
}

func TestEnvironmentStore(t *testing.T) {
	store := NewEnvironmentStore()

	t.Setenv(envAPIKey, "")
	t.Setenv(envAPISecret, "")
	if store.Exists("") {
		t.Error("Expected no environment credentials")
	}

	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envAPISecret, "env-secret")
	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from env: %v", err)
	}
	if account.Credentials() != (Credentials{APIKey: "env-key", APISecret: "env-secret"}) {
		t.Errorf("Unexpected env credentials %+v", account)
	}
	if _, err := store.Retrieve("work"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Named lookups other than env should miss, got %v", err)
	}
	if err := store.Store(account); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	if err != nil {
		t.Fatalf("Mock keyring should be available: %v", err)
	}

	for _, name := range []string{"work", "home"} {
		if err := store.Store(&Account{Name: name, APIKey: name + "-key", APISecret: name + "-secret"}); err != nil {
			t.Fatalf("Failed to store %s: %v", name, err)
		}
	}
	// Storing again must not duplicate the index entry
	if err := store.Store(&Account{Name: "work", APIKey: "new-key", APISecret: "new-secret"}); err != nil {
		t.Fatal(err)
	}

	accounts, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}

	work, err := store.Retrieve("work")
	if err != nil {
		t.Fatal(err)
	}
	if work.APIKey != "new-key" {
		t.Errorf("Expected the overwritten key, got %s", work.APIKey)
	}

	if err := store.Delete("work"); err != nil {
		t.Fatal(err)
	}
	if store.Exists("work") {
		t.Error("Expected work to be deleted")
	}
	if err := store.Delete("work"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
	accounts, _ = store.List()
	if len(accounts) != 1 || accounts[0].Name != "home" {
		t.Errorf("Expected only home to remain, got %v", accounts)
	}
}

func TestWriteAPIKeyGuide(t *testing.T) {
	var buf bytes.Buffer
	WriteAPIKeyGuide(&buf)
	if !strings.Contains(buf.String(), "api_secret") || !strings.Contains(buf.String(), "TWTIMG_API_KEY") {
		t.Errorf("Guide should mention every way to supply credentials:\n%s", buf.String())
	}
}

func TestMaskString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "********"},
		{"short", "********"},
		{"abcdefghijkl", "abcd...ijkl"},
	}
	for _, tt := range tests {
		if got := maskString(tt.in); got != tt.want {
			t.Errorf("maskString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
