package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalStorage keeps objects on disk and hands out signed, expiring URLs
// served by Handler.
type LocalStorage struct {
	basePath   string
	baseURL    string
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewLocalStorage creates a new local filesystem storage. baseURL is the
// public prefix Handler is mounted under.
func NewLocalStorage(basePath, baseURL string, signingKey []byte, ttl time.Duration) (*LocalStorage, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("signing key is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath:   basePath,
		baseURL:    strings.TrimRight(baseURL, "/"),
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

func (l *LocalStorage) Name() string {
	return "local"
}

// DirectURL signs the key with an expiry of now+ttl.
func (l *LocalStorage) DirectURL(ctx context.Context, key string) (string, error) {
	key = cleanKey(key)
	if key == "" {
		return "", errors.New("empty key")
	}
	if _, err := os.Stat(l.fullPath(key)); err != nil {
		return "", fmt.Errorf("failed to stat object: %w", err)
	}

	expires := strconv.FormatInt(l.now().Add(l.ttl).Unix(), 10)
	q := url.Values{}
	q.Set("expires", expires)
	q.Set("sig", l.sign(key, expires))
	return fmt.Sprintf("%s/%s?%s", l.baseURL, (&url.URL{Path: key}).EscapedPath(), q.Encode()), nil
}

func (l *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	key = cleanKey(key)
	if key == "" {
		return "", errors.New("empty key")
	}
	fullPath := l.fullPath(key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	outFile, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, body); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return key, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	key = cleanKey(key)
	if key == "" {
		return errors.New("empty key")
	}
	if err := os.Remove(l.fullPath(key)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Handler serves signed URLs. Mount it with http.StripPrefix so the request
// path is the object key.
func (l *LocalStorage) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := cleanKey(r.URL.Path)
		expires := r.URL.Query().Get("expires")
		sig := r.URL.Query().Get("sig")

		if key == "" || !l.valid(key, expires, sig) {
			http.Error(w, "link expired or invalid", http.StatusForbidden)
			return
		}
		http.ServeFile(w, r, l.fullPath(key))
	})
}

func (l *LocalStorage) valid(key, expires, sig string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || l.now().Unix() > exp {
		return false
	}
	want, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	got, _ := hex.DecodeString(l.sign(key, expires))
	return hmac.Equal(want, got)
}

func (l *LocalStorage) sign(key, expires string) string {
	mac := hmac.New(sha256.New, l.signingKey)
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}

func (l *LocalStorage) fullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

// cleanKey confines a key to the storage root.
func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean("/"+key), "/")
}
