package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestBackupKey(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{1, "villani_hours_v2.bak.1"},
		{2, "villani_hours_v2.bak.2"},
		{3, "villani_hours_v2.bak.3"},
	}

	for _, tt := range tests {
		if got := BackupKey(DefaultKey, tt.n); got != tt.expected {
			t.Errorf("BackupKey(%d) = %q, expected %q", tt.n, got, tt.expected)
		}
	}
}

func TestCreateBackup_NothingStored(t *testing.T) {
	slot := NewMemorySlot()
	if err := CreateBackup(slot, DefaultKey); err != nil {
		t.Fatalf("CreateBackup() returned unexpected error: %v", err)
	}
	if _, err := slot.Read(BackupKey(DefaultKey, 1)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no backup, got err=%v", err)
	}
}

func TestCreateBackup_Rotation(t *testing.T) {
	slot := NewMemorySlot()

	for _, v := range []string{"v1", "v2", "v3", "v4"} {
		if err := slot.Write(DefaultKey, []byte(v)); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}
		if err := CreateBackup(slot, DefaultKey); err != nil {
			t.Fatalf("CreateBackup() returned unexpected error: %v", err)
		}
	}

	expected := map[int]string{1: "v4", 2: "v3", 3: "v2"}
	for n, want := range expected {
		data, err := slot.Read(BackupKey(DefaultKey, n))
		if err != nil {
			t.Fatalf("backup %d missing: %v", n, err)
		}
		if string(data) != want {
			t.Errorf("backup %d = %q, expected %q", n, data, want)
		}
	}
	if _, err := slot.Read(BackupKey(DefaultKey, 4)); !errors.Is(err, ErrNotFound) {
		t.Error("only MaxBackupCount backups should be kept")
	}
}

func TestListBackups(t *testing.T) {
	slot := NewMemorySlot()
	backups, err := ListBackups(slot, DefaultKey)
	if err != nil {
		t.Fatalf("ListBackups() returned unexpected error: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}

	_ = slot.Write(DefaultKey, []byte("{}"))
	_ = CreateBackup(slot, DefaultKey)
	_ = CreateBackup(slot, DefaultKey)

	backups, err = ListBackups(slot, DefaultKey)
	if err != nil {
		t.Fatalf("ListBackups() returned unexpected error: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
	if backups[0].Number != 1 || backups[1].Number != 2 {
		t.Errorf("backups not sorted by recency: %+v", backups)
	}
	if backups[0].Size != 2 {
		t.Errorf("expected size 2, got %d", backups[0].Size)
	}
}

func TestRestoreBackup(t *testing.T) {
	slot := NewMemorySlot()
	_ = slot.Write(DefaultKey, []byte("old"))
	_ = CreateBackup(slot, DefaultKey)
	_ = slot.Write(DefaultKey, []byte("new"))

	if err := RestoreBackup(slot, DefaultKey, 1); err != nil {
		t.Fatalf("RestoreBackup() returned unexpected error: %v", err)
	}

	data, _ := slot.Read(DefaultKey)
	if string(data) != "old" {
		t.Errorf("restored value = %q, expected %q", data, "old")
	}

	// The value that was overwritten is now the most recent backup
	data, _ = slot.Read(BackupKey(DefaultKey, 1))
	if string(data) != "new" {
		t.Errorf("safety backup = %q, expected %q", data, "new")
	}
}

func TestRestoreBackup_Errors(t *testing.T) {
	slot := NewMemorySlot()

	tests := []struct {
		name string
		n    int
		msg  string
	}{
		{"zero", 0, "invalid backup number"},
		{"too large", 4, "invalid backup number"},
		{"missing", 2, "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RestoreBackup(slot, DefaultKey, tt.n)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q should contain %q", err, tt.msg)
			}
		})
	}
}
