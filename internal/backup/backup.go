// Package backup copies the ledger and the credential vault to a backup
// destination. The vault is copied byte for byte and stays encrypted.
// Restoring is a manual administrative task.
package backup

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/dmitrijs2005/signout/internal/logging"
	"github.com/google/uuid"
)

const (
	LedgerObject = "current_signouts.json"
	VaultObject  = "ds_pins.dat"

	keyPrefix   = "backups"
	stampLayout = "20060102T150405Z"
)

// LedgerExporter renders the ledger as a JSON document.
type LedgerExporter interface {
	ExportDocument(ctx context.Context) ([]byte, error)
}

// Result describes a completed backup.
type Result struct {
	Destination string
	Prefix      string
	Keys        []string
}

type Service struct {
	ledger    LedgerExporter
	vaultPath string
	dest      Destination
	logger    logging.Logger
	now       func() time.Time
}

func NewService(ledger LedgerExporter, vaultPath string, dest Destination, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{ledger: ledger, vaultPath: vaultPath, dest: dest, logger: logger, now: time.Now}
}

// Create writes both objects under backups/<UTC time>-<short id>/.
func (s *Service) Create(ctx context.Context, operator string) (*Result, error) {
	doc, err := s.ledger.ExportDocument(ctx)
	if err != nil {
		return nil, fmt.Errorf("export ledger: %w", err)
	}
	vaultBytes, err := os.ReadFile(s.vaultPath)
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	prefix := path.Join(keyPrefix, s.now().UTC().Format(stampLayout)+"-"+uuid.NewString()[:8])
	res := &Result{Destination: s.dest.String(), Prefix: prefix}

	for _, obj := range []struct {
		name string
		data []byte
	}{
		{LedgerObject, doc},
		{VaultObject, vaultBytes},
	} {
		key := path.Join(prefix, obj.name)
		if err := s.dest.Put(ctx, key, obj.data); err != nil {
			s.logger.Error(ctx, "backup failed", "key", key, "error", err)
			return nil, err
		}
		res.Keys = append(res.Keys, key)
	}

	s.logger.Info(ctx, "backup", "destination", res.Destination, "prefix", prefix, "ds", operator)
	return res, nil
}
