// Package assets turns stored picture/cover references into short-lived signed URLs
// for a private Cloud Storage bucket.
package assets

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"lorekeeper/internal/platform/logger"
)

const (
	DefaultURLTTL = time.Hour
	storageHost   = "storage.googleapis.com"
)

// Resolver maps a stored asset reference to the URL handed to clients.
type Resolver interface {
	Resolve(ref string) string
}

// Passthrough returns references unchanged.
type Passthrough struct{}

func (Passthrough) Resolve(ref string) string { return ref }

type Signer struct {
	bucket   string
	accessID string
	key      []byte
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

func NewSigner(bucket, accessID string, privateKeyPEM []byte, ttl time.Duration, baseLog *logger.Logger) (*Signer, error) {
	if bucket == "" || accessID == "" || len(privateKeyPEM) == 0 {
		return nil, fmt.Errorf("asset signer needs bucket, signer email and private key")
	}
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Signer{
		bucket:   bucket,
		accessID: accessID,
		key:      privateKeyPEM,
		ttl:      ttl,
		now:      time.Now,
		log:      baseLog.With("service", "AssetSigner"),
	}, nil
}

// NewSignerFromKeyFile reads the PEM private key from disk.
func NewSignerFromKeyFile(bucket, accessID, keyFile string, ttl time.Duration, baseLog *logger.Logger) (*Signer, error) {
	pem, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read signer key: %w", err)
	}
	return NewSigner(bucket, accessID, pem, ttl, baseLog)
}

// ObjectKey cleans a stored reference down to an object key in the signer's bucket.
// It accepts bare keys, gs:// URLs, path-style and virtual-host-style storage URLs
// (query strings from earlier signatures are dropped). ok is false for URLs on other
// hosts and for references to other buckets.
func (s *Signer) ObjectKey(ref string) (key string, ok bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if !strings.Contains(ref, "://") {
		if i := strings.IndexAny(ref, "?#"); i >= 0 {
			ref = ref[:i]
		}
		key = strings.TrimLeft(ref, "/")
		return key, key != ""
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	path := strings.TrimLeft(u.Path, "/")

	switch {
	case u.Scheme == "gs" && u.Host == s.bucket:
		key = path
	case u.Host == s.bucket+"."+storageHost:
		key = path
	case u.Host == storageHost && strings.HasPrefix(path, s.bucket+"/"):
		key = strings.TrimPrefix(path, s.bucket+"/")
	default:
		return "", false
	}
	return key, key != ""
}

// Sign returns a V4 signed GET URL for ref.
func (s *Signer) Sign(ref string) (string, error) {
	key, ok := s.ObjectKey(ref)
	if !ok {
		return "", fmt.Errorf("not an object in bucket %s: %q", s.bucket, ref)
	}
	return storage.SignedURL(s.bucket, key, &storage.SignedURLOptions{
		GoogleAccessID: s.accessID,
		PrivateKey:     s.key,
		Method:         http.MethodGet,
		Expires:        s.now().Add(s.ttl),
		Scheme:         storage.SigningSchemeV4,
	})
}

// Resolve signs bucket references and leaves everything else untouched.
func (s *Signer) Resolve(ref string) string {
	if _, ok := s.ObjectKey(ref); !ok {
		return ref
	}
	signed, err := s.Sign(ref)
	if err != nil {
		s.log.Warn("sign asset failed", "ref", ref, "error", err)
		return ref
	}
	return signed
}

// ResolveAll applies r to every reference, keeping order.
func ResolveAll(r Resolver, refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, r.Resolve(ref))
	}
	return out
}
