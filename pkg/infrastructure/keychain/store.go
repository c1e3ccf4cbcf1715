package keychain

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"sync"

	"github.com/einsteinx2/balance-open/pkg/domain/model"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	scryptN   = 32768
	scryptR   = 8
	scryptP   = 1
	keySize   = 32
	saltSize  = 32
	nonceSize = 24
)

// Store ファイルベースの認証情報ストア
// 各エントリーはパスフレーズ由来の鍵で暗号化して保存する
type Store struct {
	path string
	key  [keySize]byte
	mu   sync.Mutex
}

type storeFile struct {
	Salt    string            `json:"salt"`
	Entries map[string]string `json:"entries"`
}

// NewStore ストアを開く（ファイルがなければ作成）
func NewStore(path, passphrase string) (*Store, error) {
	s := &Store{path: path}

	file, err := s.read()
	if err != nil {
		return nil, err
	}
	if file == nil {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to create salt; error: %w", err)
		}
		file = &storeFile{
			Salt:    base64.StdEncoding.EncodeToString(salt),
			Entries: map[string]string{},
		}
		if err := s.write(file); err != nil {
			return nil, err
		}
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt, path: %s; error: %w", path, err)
	}
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key; error: %w", err)
	}
	copy(s.key[:], key)

	return s, nil
}

// SetCredentials 認証情報の保存
func (s *Store) SetCredentials(institutionID uint, credentials *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}
	if file == nil {
		return fmt.Errorf("keychain is not initialized, path: %s", s.path)
	}

	plain, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("failed to encode credentials; error: %w", err)
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("failed to create nonce; error: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)

	file.Entries[formatID(institutionID)] = base64.StdEncoding.EncodeToString(sealed)
	return s.write(file)
}

// GetCredentials 認証情報の取得
func (s *Store) GetCredentials(institutionID uint) (*model.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("keychain is not initialized, path: %s", s.path)
	}

	encoded, ok := file.Entries[formatID(institutionID)]
	if !ok {
		return nil, fmt.Errorf("credentials not found, institution: %d", institutionID)
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode credentials, institution: %d; error: %w", institutionID, err)
	}
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("credentials entry is broken, institution: %d", institutionID)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("failed to open credentials, institution: %d", institutionID)
	}

	var credentials model.Credentials
	if err := json.Unmarshal(plain, &credentials); err != nil {
		return nil, fmt.Errorf("failed to parse credentials, institution: %d; error: %w", institutionID, err)
	}
	return &credentials, nil
}

// DeleteCredentials 認証情報の削除
func (s *Store) DeleteCredentials(institutionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}
	if file == nil {
		return nil
	}

	delete(file.Entries, formatID(institutionID))
	return s.write(file)
}

func (s *Store) read() (*storeFile, error) {
	body, err := ioutil.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keychain, path: %s; error: %w", s.path, err)
	}

	var file storeFile
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("failed to parse keychain, path: %s; error: %w", s.path, err)
	}
	if file.Entries == nil {
		file.Entries = map[string]string{}
	}
	return &file, nil
}

func (s *Store) write(file *storeFile) error {
	body, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode keychain; error: %w", err)
	}
	if err := ioutil.WriteFile(s.path, body, 0600); err != nil {
		return fmt.Errorf("failed to write keychain, path: %s; error: %w", s.path, err)
	}
	return nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
