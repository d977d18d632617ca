// Package storage uploads objects (database backups) to the FTP server.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// Uploader stores an object under a slash-separated key
type Uploader interface {
	Upload(ctx context.Context, key string, data io.Reader) error
	URL(key string) string
}

type FTPStore struct {
	addr     string
	user     string
	password string
	baseURL  string
	timeout  time.Duration
}

func NewFTPStore(addr, user, password, baseURL string) *FTPStore {
	return &FTPStore{
		addr:     addr,
		user:     user,
		password: password,
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  10 * time.Second,
	}
}

func (s *FTPStore) connect(ctx context.Context) (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(s.addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(s.timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to FTP: %w", err)
	}

	if err := conn.Login(s.user, s.password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("failed to login to FTP: %w", err)
	}
	return conn, nil
}

// Upload opens a connection per call; backups are rare enough that pooling
// connections buys nothing
func (s *FTPStore) Upload(ctx context.Context, key string, data io.Reader) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit()

	// MakeDir fails when the directory already exists, which is fine
	for _, dir := range parentDirs(key) {
		_ = conn.MakeDir(dir)
	}

	if err := conn.Stor(key, data); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// URL is where key can be fetched from, empty when no public base URL is set
func (s *FTPStore) URL(key string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// parentDirs lists the directories leading to key, outermost first
func parentDirs(key string) []string {
	dir := path.Dir(strings.TrimLeft(key, "/"))
	if dir == "." || dir == "/" {
		return nil
	}
	parts := strings.Split(dir, "/")
	dirs := make([]string, 0, len(parts))
	for i := range parts {
		dirs = append(dirs, strings.Join(parts[:i+1], "/"))
	}
	return dirs
}

var _ Uploader = (*FTPStore)(nil)
