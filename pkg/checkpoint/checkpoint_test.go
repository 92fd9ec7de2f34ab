package checkpoint

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"twtimg/pkg/logger"
)

func TestCheckpointManager(t *testing.T) {
	dir := t.TempDir()
	user := "NASA"

	t.Run("CreateAndLoad", func(t *testing.T) {
		mgr, err := NewManagerAt(dir, user, logger.NewNopLogger())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}

		cp, err := mgr.Create(user, "/tmp/nasa")
		if err != nil {
			t.Fatalf("Failed to create checkpoint: %v", err)
		}
		if cp.User != user || cp.Destination != "/tmp/nasa" || cp.Version != 1 {
			t.Errorf("Unexpected checkpoint: %+v", cp)
		}

		loaded, err := mgr.Load()
		if err != nil {
			t.Fatalf("Failed to load checkpoint: %v", err)
		}
		if loaded == nil {
			t.Fatal("Expected checkpoint, got nil")
		}
		if loaded.User != user {
			t.Errorf("Expected loaded user %s, got %s", user, loaded.User)
		}
	})

	t.Run("UpdateProgress", func(t *testing.T) {
		mgr, err := NewManagerAt(dir, user, logger.NewNopLogger())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}

		cp, err := mgr.Create(user, "/tmp/nasa")
		if err != nil {
			t.Fatalf("Failed to create checkpoint: %v", err)
		}

		if err := mgr.UpdateProgress(cp, 1050118621198921728, 199, 42); err != nil {
			t.Fatalf("Failed to update progress: %v", err)
		}
		if err := mgr.UpdateProgress(cp, 1040000000000000000, 398, 80); err != nil {
			t.Fatalf("Failed to update progress: %v", err)
		}

		loaded, err := mgr.Load()
		if err != nil {
			t.Fatalf("Failed to load checkpoint: %v", err)
		}
		if loaded.Cursor != 1040000000000000000 {
			t.Errorf("Expected cursor to survive a round trip, got %d", loaded.Cursor)
		}
		if loaded.TweetsChecked != 398 || loaded.ImagesSaved != 80 || loaded.Pages != 2 {
			t.Errorf("Unexpected progress: %+v", loaded)
		}
	})

	t.Run("DeleteAndExists", func(t *testing.T) {
		mgr, err := NewManagerAt(dir, user, logger.NewNopLogger())
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}

		if _, err := mgr.Create(user, ""); err != nil {
			t.Fatal(err)
		}
		if !mgr.Exists() {
			t.Error("Expected checkpoint to exist")
		}

		if err := mgr.Delete(); err != nil {
			t.Fatalf("Failed to delete checkpoint: %v", err)
		}
		if mgr.Exists() {
			t.Error("Expected checkpoint to be deleted")
		}
		if err := mgr.Delete(); err != nil {
			t.Errorf("Deleting a missing checkpoint should succeed, got %v", err)
		}

		loaded, err := mgr.Load()
		if err != nil || loaded != nil {
			t.Errorf("Expected nil, nil for a missing checkpoint, got %v, %v", loaded, err)
		}
	})
}

func TestLoadCorruptCheckpoint(t *testing.T) {
	mgr, err := NewManagerAt(t.TempDir(), "nasa", logger.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mgr.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := mgr.Load(); err == nil {
		t.Error("Expected an error for a corrupt checkpoint")
	}
}

func TestCheckpointFileName(t *testing.T) {
	mgr, err := NewManagerAt(t.TempDir(), "Some/User", logger.NewNopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if base := filepath.Base(mgr.Path()); base != "some_user.checkpoint.json" {
		t.Errorf("Unexpected checkpoint file name %s", base)
	}
}

func TestNewManagerUsesDataDirectory(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_DATA_HOME is only honored on linux")
	}
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	mgr, err := NewManager("nasa", logger.NewNopLogger())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if !strings.HasPrefix(mgr.Path(), filepath.Join(dataHome, "twtimg", "checkpoints")) {
		t.Errorf("Checkpoint stored outside the data directory: %s", mgr.Path())
	}
}
