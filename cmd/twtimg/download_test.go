package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twtimg/pkg/auth"
	"twtimg/pkg/config"
	errs "twtimg/pkg/errors"
)

type fakeAccountStore struct {
	accounts map[string]*auth.Account
	def      *auth.Account
}

func (f *fakeAccountStore) Retrieve(name string) (*auth.Account, error) {
	if a, ok := f.accounts[name]; ok {
		return a, nil
	}
	return nil, auth.ErrCredentialsNotFound
}

func (f *fakeAccountStore) RetrieveDefault() (*auth.Account, error) {
	if f.def == nil {
		return nil, auth.ErrCredentialsNotFound
	}
	return f.def, nil
}

func openerFor(store accountStore, err error) func() (accountStore, error) {
	return func() (accountStore, error) { return store, err }
}

func writeCredentialsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveCredentials(t *testing.T) {
	work := &auth.Account{Name: "work", APIKey: "work-key", APISecret: "work-secret"}
	store := &fakeAccountStore{
		accounts: map[string]*auth.Account{"work": work},
		def:      &auth.Account{Name: "default", APIKey: "def-key", APISecret: "def-secret"},
	}

	withKeys := config.DefaultConfig()
	withKeys.Twitter.APIKey = "cfg-key"
	withKeys.Twitter.APISecret = "cfg-secret"

	tests := []struct {
		name       string
		cfg        *config.Config
		file       string
		account    string
		open       func() (accountStore, error)
		wantKey    string
		wantSource string
		wantErr    error
	}{
		{
			name:       "file wins over everything",
			cfg:        withKeys,
			file:       writeCredentialsFile(t, `{"api_key": "file-key", "api_secret": "file-secret"}`),
			open:       openerFor(store, nil),
			wantKey:    "file-key",
			wantSource: "file",
		},
		{
			name:    "incomplete file",
			cfg:     withKeys,
			file:    writeCredentialsFile(t, `{"api_key": "file-key"}`),
			open:    openerFor(store, nil),
			wantErr: errs.ErrConfidentialsNotSupplied,
		},
		{
			name:       "configuration",
			cfg:        withKeys,
			open:       openerFor(nil, errors.New("must not be opened")),
			wantKey:    "cfg-key",
			wantSource: "config",
		},
		{
			name:       "named account beats configuration",
			cfg:        withKeys,
			account:    "work",
			open:       openerFor(store, nil),
			wantKey:    "work-key",
			wantSource: "account:work",
		},
		{
			name:       "default account",
			cfg:        config.DefaultConfig(),
			open:       openerFor(store, nil),
			wantKey:    "def-key",
			wantSource: "account:default",
		},
		{
			name:    "unknown account",
			cfg:     config.DefaultConfig(),
			account: "missing",
			open:    openerFor(store, nil),
			wantErr: errs.ErrConfidentialsNotSupplied,
		},
		{
			name:    "nothing stored",
			cfg:     config.DefaultConfig(),
			open:    openerFor(&fakeAccountStore{}, nil),
			wantErr: errs.ErrConfidentialsNotSupplied,
		},
		{
			name:    "store unavailable",
			cfg:     config.DefaultConfig(),
			open:    openerFor(nil, errors.New("no keyring")),
			wantErr: errs.ErrConfidentialsNotSupplied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, source, err := resolveCredentials(tt.cfg, tt.file, tt.account, tt.open)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, creds.APIKey)
			assert.Equal(t, tt.wantSource, source)
		})
	}
}

func TestCommandLineFlags(t *testing.T) {
	t.Cleanup(func() {
		verbose = false
		for name, def := range map[string]string{"size": "large", "limit": "3200", "rts": "false"} {
			_ = rootCmd.Flags().Set(name, def)
			rootCmd.Flags().Lookup(name).Changed = false
		}
	})

	flags := commandLineFlags(rootCmd)
	assert.Equal(t, map[string]interface{}{"console-level": "error"}, flags)

	require.NoError(t, rootCmd.Flags().Set("size", "orig"))
	require.NoError(t, rootCmd.Flags().Set("limit", "50"))
	require.NoError(t, rootCmd.Flags().Set("rts", "true"))
	verbose = true

	flags = commandLineFlags(rootCmd)
	assert.Equal(t, "orig", flags["size"])
	assert.Equal(t, 50, flags["limit"])
	assert.Equal(t, true, flags["rts"])
	assert.NotContains(t, flags, "log-level")
	assert.NotContains(t, flags, "console-level")
	assert.NotContains(t, flags, "timeout")

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flags)
	assert.Equal(t, "orig", cfg.Download.Size)
	assert.Equal(t, 50, cfg.Download.Limit)
	assert.True(t, cfg.Download.IncludeRetweets)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "twtimg.yaml")
	configFile = path
	t.Cleanup(func() { configFile = "" })

	require.NoError(t, runConfigInit(configInitCmd, nil))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Download, cfg.Download)

	err = runConfigInit(configInitCmd, nil)
	assert.Error(t, err)
}

func TestQuietConsoleKeepsFileLogLevel(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "twtimg.yaml")
	logPath := filepath.Join(dir, "twtimg.log")
	content := "logging:\n  level: debug\n  file: " + logPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))

	verbose = false
	cfg, err := config.Load(cfgPath, commandLineFlags(rootCmd))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "error", cfg.Logging.ConsoleLevel)
	assert.Equal(t, logPath, cfg.Logging.File)
}
