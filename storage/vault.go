package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/electr1fy0/jot/crypto"
)

const vaultVersion = 1

// vaultFile is the decrypted vault payload.
type vaultFile struct {
	Version int             `json:"version"`
	Notes   map[string]Note `json:"notes"`
}

// VaultStore keeps every note in one password-encrypted file that is
// rewritten on each mutation.
type VaultStore struct {
	path     string
	password string
	notes    map[string]Note
	log      *slog.Logger
}

// VaultExists reports whether a vault file is present at path.
func VaultExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// OpenVault decrypts the vault at path, creating an empty one if it does not
// exist. A wrong password returns ErrBadPassword.
func OpenVault(path, password string, logger *slog.Logger) (*VaultStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &VaultStore{
		path:     path,
		password: password,
		notes:    make(map[string]Note),
		log:      logger,
	}

	exists, err := VaultExists(path)
	if err != nil {
		return nil, storageErr("open vault", err)
	}
	if !exists {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, storageErr("open vault", err)
		}
		if err := v.persist(); err != nil {
			return nil, err
		}
		logger.Info("vault created", "path", path)
		return v, nil
	}

	if err := v.load(); err != nil {
		return nil, err
	}
	logger.Debug("vault opened", "path", path, "notes", len(v.notes))
	return v, nil
}

func (v *VaultStore) load() error {
	sealed, err := os.ReadFile(v.path)
	if err != nil {
		return storageErr("read vault", err)
	}
	var env crypto.Envelope
	if err := json.Unmarshal(sealed, &env); err != nil {
		return storageErr("read vault", err)
	}
	plain, err := crypto.Open(env, v.password)
	if errors.Is(err, crypto.ErrDecrypt) {
		return ErrBadPassword
	}
	if err != nil {
		return storageErr("read vault", err)
	}

	var vf vaultFile
	if err := json.Unmarshal(plain, &vf); err != nil {
		return storageErr("read vault", err)
	}
	if vf.Version > vaultVersion {
		return storageErr("read vault", fmt.Errorf("vault version %d is newer than supported version %d", vf.Version, vaultVersion))
	}
	if vf.Notes != nil {
		v.notes = vf.Notes
	}
	return nil
}

func (v *VaultStore) persist() error {
	plain, err := json.Marshal(vaultFile{Version: vaultVersion, Notes: v.notes})
	if err != nil {
		return storageErr("write vault", err)
	}
	env, err := crypto.Seal(plain, v.password)
	if err != nil {
		return storageErr("write vault", err)
	}
	sealed, err := json.Marshal(env)
	if err != nil {
		return storageErr("write vault", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(v.path), ".vault-*")
	if err != nil {
		return storageErr("write vault", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storageErr("write vault", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storageErr("write vault", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return storageErr("write vault", err)
	}
	if err := os.Rename(tmpName, v.path); err != nil {
		os.Remove(tmpName)
		return storageErr("write vault", err)
	}
	return nil
}

// apply runs mutate and persists; the map is restored if the write fails.
func (v *VaultStore) apply(mutate func(map[string]Note)) error {
	prev := make(map[string]Note, len(v.notes))
	for k, n := range v.notes {
		prev[k] = n
	}
	mutate(v.notes)
	if err := v.persist(); err != nil {
		v.notes = prev
		return err
	}
	return nil
}

func (v *VaultStore) Create(_ context.Context, text string, createdAt int64) (Note, error) {
	id, err := newID()
	if err != nil {
		return Note{}, storageErr("create", err)
	}
	if _, taken := v.notes[id]; taken {
		return Note{}, storageErr("create", fmt.Errorf("duplicate id %s", id))
	}
	n := Note{ID: id, Text: text, CreatedAt: createdAt}
	if err := v.apply(func(m map[string]Note) { m[id] = n }); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (v *VaultStore) GetAll(context.Context) ([]Note, error) {
	notes := make([]Note, 0, len(v.notes))
	for _, n := range v.notes {
		notes = append(notes, n)
	}
	return notes, nil
}

func (v *VaultStore) Get(_ context.Context, id string) (Note, error) {
	n, ok := v.notes[id]
	if !ok {
		return Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n, nil
}

func (v *VaultStore) Replace(_ context.Context, n Note) error {
	return v.apply(func(m map[string]Note) { m[n.ID] = n })
}

func (v *VaultStore) Delete(_ context.Context, id string) error {
	if _, ok := v.notes[id]; !ok {
		return nil
	}
	return v.apply(func(m map[string]Note) { delete(m, id) })
}

// ChangePassword re-seals the vault under newPassword.
func (v *VaultStore) ChangePassword(newPassword string) error {
	if newPassword == "" {
		return errors.New("new password is empty")
	}
	old := v.password
	v.password = newPassword
	if err := v.persist(); err != nil {
		v.password = old
		return err
	}
	v.log.Info("vault password changed", "path", v.path)
	return nil
}

func (v *VaultStore) Close() error { return nil }
