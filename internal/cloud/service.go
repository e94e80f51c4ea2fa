// Package cloud backs the ledger up to remote storage and restores it by
// merging, the same way an imported file is merged.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/khata/internal/codec"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
	"github.com/MrJamesThe3rd/khata/internal/ledger/store"
)

var (
	ErrNotConnected = errors.New("not connected to cloud storage")
	ErrNoBackup     = errors.New("no backup found")
)

const manifestName = "khata_backup.json"

// Ledger is the part of ledger.Service a backup needs.
type Ledger interface {
	Collection(ctx context.Context, kind ledger.Kind) (ledger.Collection, error)
	Merge(ctx context.Context, incoming ledger.Collection) (ledger.MergeReport, error)
}

// Manifest describes the most recent backup on the drive.
type Manifest struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Customers int       `json:"customers"`
	Creditors int       `json:"creditors"`
}

// Status is the connection state shown to the user.
type Status struct {
	Connected  bool
	Account    string
	LastBackup *time.Time
}

// RestoreReport holds one merge report per kind restored.
type RestoreReport struct {
	BackupID  string
	Customers ledger.MergeReport
	Creditors ledger.MergeReport
}

type Service struct {
	ledger Ledger
	drive  Drive
	now    func() time.Time

	mu         sync.Mutex
	connected  bool
	account    string
	lastBackup time.Time
}

func NewService(l Ledger, drive Drive) *Service {
	return &Service{
		ledger: l,
		drive:  drive,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Connect(account string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = true
	s.account = account

	slog.Info("cloud storage connected", "account", account)

	return s.statusLocked()
}

// Disconnect forgets the connection and the last backup time.
func (s *Service) Disconnect() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
	s.account = ""
	s.lastBackup = time.Time{}

	return s.statusLocked()
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.statusLocked()
}

func (s *Service) statusLocked() Status {
	st := Status{Connected: s.connected, Account: s.account}
	if !s.lastBackup.IsZero() {
		at := s.lastBackup
		st.LastBackup = &at
	}

	return st
}

// Backup uploads both collections and a manifest naming the backup.
func (s *Service) Backup(ctx context.Context) (Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return Manifest{}, ErrNotConnected
	}

	m := Manifest{ID: uuid.NewString(), CreatedAt: s.now()}

	for _, kind := range []ledger.Kind{ledger.KindReceivable, ledger.KindPayable} {
		c, err := s.ledger.Collection(ctx, kind)
		if err != nil {
			return Manifest{}, err
		}

		data, err := codec.Marshal(c)
		if err != nil {
			return Manifest{}, err
		}

		name, err := objectName(kind)
		if err != nil {
			return Manifest{}, err
		}

		if err := s.drive.Put(ctx, name, data); err != nil {
			return Manifest{}, fmt.Errorf("uploading %s: %w", kind, err)
		}

		if kind == ledger.KindReceivable {
			m.Customers = len(c.Entities)
		} else {
			m.Creditors = len(c.Entities)
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return Manifest{}, fmt.Errorf("encoding manifest: %w", err)
	}

	if err := s.drive.Put(ctx, manifestName, data); err != nil {
		return Manifest{}, fmt.Errorf("uploading manifest: %w", err)
	}

	s.lastBackup = m.CreatedAt

	slog.Info("backup complete", "id", m.ID, "customers", m.Customers, "creditors", m.Creditors)

	return m, nil
}

// Restore downloads the latest backup and merges each collection into the
// stored ledger. Local data wins every conflict.
func (s *Service) Restore(ctx context.Context) (RestoreReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return RestoreReport{}, ErrNotConnected
	}

	raw, err := s.drive.Get(ctx, manifestName)
	if errors.Is(err, ErrObjectNotFound) {
		return RestoreReport{}, ErrNoBackup
	}

	if err != nil {
		return RestoreReport{}, fmt.Errorf("downloading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return RestoreReport{}, &codec.FormatError{Op: "restore", Err: err}
	}

	// decode everything before touching the ledger so a bad object leaves it as it was
	var incoming []ledger.Collection

	for _, kind := range []ledger.Kind{ledger.KindReceivable, ledger.KindPayable} {
		name, err := objectName(kind)
		if err != nil {
			return RestoreReport{}, err
		}

		data, err := s.drive.Get(ctx, name)
		if errors.Is(err, ErrObjectNotFound) {
			continue
		}

		if err != nil {
			return RestoreReport{}, fmt.Errorf("downloading %s: %w", kind, err)
		}

		c, err := codec.Unmarshal(data, kind)
		if err != nil {
			return RestoreReport{}, err
		}

		incoming = append(incoming, c)
	}

	report := RestoreReport{BackupID: m.ID}

	for _, c := range incoming {
		merged, err := s.ledger.Merge(ctx, c)
		if err != nil {
			return RestoreReport{}, err
		}

		if c.Kind == ledger.KindReceivable {
			report.Customers = merged
		} else {
			report.Creditors = merged
		}
	}

	slog.Info("restore complete", "id", m.ID)

	return report, nil
}

func objectName(kind ledger.Kind) (string, error) {
	key, err := store.Key(kind)
	if err != nil {
		return "", err
	}

	return key + ".json", nil
}
