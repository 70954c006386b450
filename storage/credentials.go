package storage

import (
	"chat-client/domain"
	"chat-client/errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	tokenKey = "auth:token"
	userKey  = "auth:user"
)

// CredentialStore keeps the token and the cached user record between runs.
// The session core only ever reads what Load returns.
type CredentialStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewCredentialStore(db *badger.DB, log *slog.Logger) *CredentialStore {
	return &CredentialStore{db: db, log: log}
}

// Load returns the stored credential, or errors.ErrNoCredential when no
// token was saved. A missing user record is not an error.
func (c *CredentialStore) Load() (domain.Credential, error) {
	var token wrapperspb.StringValue
	var user wrapperspb.BytesValue
	err := c.db.View(func(txn *badger.Txn) error {
		if err := get(txn, tokenKey, &token); err != nil {
			return err
		}
		if err := get(txn, userKey, &user); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Credential{}, errors.ErrNoCredential
	}
	if err != nil {
		return domain.Credential{}, fmt.Errorf("loading credential: %w", err)
	}
	if token.GetValue() == "" {
		return domain.Credential{}, errors.ErrNoCredential
	}
	return domain.Credential{Token: token.GetValue(), User: user.GetValue()}, nil
}

// Save replaces the stored credential in one transaction.
func (c *CredentialStore) Save(credential domain.Credential) error {
	token, err := proto.Marshal(wrapperspb.String(credential.Token))
	if err != nil {
		return err
	}
	user, err := proto.Marshal(wrapperspb.Bytes(credential.User))
	if err != nil {
		return err
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(tokenKey), token); err != nil {
			return err
		}
		return txn.Set([]byte(userKey), user)
	})
	if err != nil {
		return fmt.Errorf("saving credential: %w", err)
	}
	c.log.Debug("Credential saved")
	return nil
}

// Clear forgets the credential. Clearing an empty store is a no-op.
func (c *CredentialStore) Clear() error {
	err := c.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{tokenKey, userKey} {
			if err := txn.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	c.log.Debug("Credential cleared")
	return nil
}

func get(txn *badger.Txn, key string, into proto.Message) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return proto.Unmarshal(val, into)
	})
}
