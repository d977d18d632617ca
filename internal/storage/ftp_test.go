package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentDirs(t *testing.T) {
	assert.Equal(t, []string{"backups"}, parentDirs("backups/backup_2024.json"))
	assert.Equal(t, []string{"a", "a/b"}, parentDirs("/a/b/c.json"))
	assert.Empty(t, parentDirs("file.json"))
}

func TestFTPStore_URL(t *testing.T) {
	s := NewFTPStore("localhost:21", "u", "p", "https://files.example.com/")
	assert.Equal(t, "https://files.example.com/backups/x.json", s.URL("backups/x.json"))
}

func TestFTPStore_URLWithoutBase(t *testing.T) {
	s := NewFTPStore("localhost:21", "u", "p", "")
	assert.Empty(t, s.URL("backups/x.json"))
}
