package keymgr

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

const keyRecordVersion = 1

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

var (
	// ErrKeyNotFound is returned when no key exists under a name
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyExists is returned when creating a name that is already taken
	ErrKeyExists = errors.New("key already exists")
)

// KeyRecord is the on-disk form of one named signing identity
type KeyRecord struct {
	Version            int    `json:"version"`
	Name               string `json:"name"`
	DID                string `json:"did"`
	KeyID              string `json:"keyId"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
	PrivateKeySeed     string `json:"privateKeySeed"`
	CreatedAt          string `json:"createdAt"`
}

// PrivateKey decodes the stored seed
func (r *KeyRecord) PrivateKey() (ed25519.PrivateKey, error) {
	seed, err := base64.StdEncoding.DecodeString(r.PrivateKeySeed)
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// Store keeps named Ed25519 identities as JSON files in one directory
type Store struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithStoreLogger sets the logger that reports unreadable key files
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DefaultKeysDir returns ~/.claimsign/keys, or .claimsign/keys without a home dir
func DefaultKeysDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claimsign", "keys")
	}
	return filepath.Join(home, ".claimsign", "keys")
}

// NewStore opens a keystore rooted at dir (DefaultKeysDir when empty)
func NewStore(dir string, opts ...StoreOption) *Store {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultKeysDir()
	}
	s := &Store{
		dir:    dir,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the keystore directory
func (s *Store) Dir() string { return s.dir }

// Create generates a new key under name
func (s *Store) Create(name string) (*KeyRecord, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return s.Import(name, priv.Seed())
}

// Import stores an existing 32-byte Ed25519 seed under name
func (s *Store) Import(name string, seed []byte) (*KeyRecord, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	pub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	did := DIDKeyFromPublicKey(pub)

	record := &KeyRecord{
		Version:            keyRecordVersion,
		Name:               name,
		DID:                did,
		KeyID:              VerificationMethodID(did),
		PublicKeyMultibase: PublicKeyMultibase(pub),
		PrivateKeySeed:     base64.StdEncoding.EncodeToString(seed),
		CreatedAt:          s.now().UTC().Format(time.RFC3339),
	}

	if err := s.write(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Get loads the key stored under name
func (s *Store) Get(name string) (*KeyRecord, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", name, err)
	}

	var record KeyRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse key %s: %w", name, err)
	}
	if record.Version != keyRecordVersion {
		return nil, fmt.Errorf("key %s: unsupported record version %d", name, record.Version)
	}
	return &record, nil
}

// List returns all readable keys sorted by name. Files that fail to load
// are skipped with a warning.
func (s *Store) List() ([]KeyRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []KeyRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keystore: %w", err)
	}

	records := make([]KeyRecord, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		record, err := s.Get(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			s.logger.Warn("skipping key file", "file", e.Name(), "error", err)
			continue
		}
		records = append(records, *record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (s *Store) write(record *KeyRecord) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create keystore: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}

	f, err := os.OpenFile(s.path(record.Name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrKeyExists, record.Name)
	}
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	return f.Close()
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func normalizeName(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", errors.New("key name is required")
	}
	if !namePattern.MatchString(name) {
		return "", fmt.Errorf("key name %q must match %s", raw, namePattern.String())
	}
	return name, nil
}
