package storage

import (
	"errors"
	"fmt"
)

const (
	// BackupSuffix separates the slot key from the rotation number
	BackupSuffix = ".bak"
	// MaxBackupCount is the maximum number of backups to keep
	MaxBackupCount = 3
)

// BackupKey returns the slot key of the backup with the given rotation number.
// Lower numbers are more recent (e.g., .bak.1 is the most recent backup).
func BackupKey(key string, n int) string {
	return fmt.Sprintf("%s%s.%d", key, BackupSuffix, n)
}

// rotateBackups shifts .bak.1 -> .bak.2 -> .bak.3, dropping the oldest.
// Missing backups are skipped.
func rotateBackups(slot Slot, key string) error {
	if err := slot.Delete(BackupKey(key, MaxBackupCount)); err != nil {
		return err
	}

	for i := MaxBackupCount - 1; i >= 1; i-- {
		data, err := slot.Read(BackupKey(key, i))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := slot.Write(BackupKey(key, i+1), data); err != nil {
			return err
		}
		if err := slot.Delete(BackupKey(key, i)); err != nil {
			return err
		}
	}
	return nil
}

// CreateBackup copies the current value of key to .bak.1 after rotating older backups.
// Nothing happens if key holds no value.
func CreateBackup(slot Slot, key string) error {
	data, err := slot.Read(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := rotateBackups(slot, key); err != nil {
		return err
	}
	return slot.Write(BackupKey(key, 1), data)
}

// BackupInfo describes one available backup
type BackupInfo struct {
	Number int    // The backup number (1, 2, or 3)
	Key    string // The slot key holding the backup
	Size   int    // Size of the stored payload in bytes
}

// ListBackups returns available backups, most recent first.
func ListBackups(slot Slot, key string) ([]BackupInfo, error) {
	var backups []BackupInfo
	for i := 1; i <= MaxBackupCount; i++ {
		data, err := slot.Read(BackupKey(key, i))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		backups = append(backups, BackupInfo{Number: i, Key: BackupKey(key, i), Size: len(data)})
	}
	return backups, nil
}

// RestoreBackup copies backup n over key. The current value is backed up first,
// so a restore can itself be undone.
func RestoreBackup(slot Slot, key string, n int) error {
	if n < 1 || n > MaxBackupCount {
		return fmt.Errorf("invalid backup number %d, must be between 1 and %d", n, MaxBackupCount)
	}

	data, err := slot.Read(BackupKey(key, n))
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("backup %d does not exist", n)
	}
	if err != nil {
		return err
	}

	if err := CreateBackup(slot, key); err != nil {
		return err
	}
	return slot.Write(key, data)
}
