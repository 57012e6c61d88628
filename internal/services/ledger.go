package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/signout/internal/filex"
	"github.com/dmitrijs2005/signout/internal/logging"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/dmitrijs2005/signout/internal/repositories/signouts"
	"github.com/dmitrijs2005/signout/internal/timex"
)

// LedgerService manages sign-out entries. Mutations take the identifier of the
// supervisor who authorised them and are written to the audit log.
type LedgerService interface {
	SignOut(ctx context.Context, operator string, d models.Draft) (*models.SignOut, error)
	Update(ctx context.Context, operator, id string, d models.Draft) (*models.SignOut, error)
	SignIn(ctx context.Context, operator, id string) (*models.SignOut, error)
	Get(ctx context.Context, id string) (*models.SignOut, error)
	List(ctx context.Context) ([]models.SignOut, error)
	Search(ctx context.Context, term string, key models.SortKey, reverse bool) ([]models.SignOut, error)
	Stats(ctx context.Context) (models.Statistics, error)
	ExportDocument(ctx context.Context) ([]byte, error)
	Export(ctx context.Context, path string) error
}

type ledgerService struct {
	repo   signouts.Repository
	logger logging.Logger
	now    func() time.Time
}

func NewLedgerService(repo signouts.Repository, logger logging.Logger) LedgerService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ledgerService{repo: repo, logger: logger, now: time.Now}
}

// SignOut validates d and stores it stamped with the current time.
func (s *ledgerService) SignOut(ctx context.Context, operator string, d models.Draft) (*models.SignOut, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.Normalize()

	created, err := s.repo.Create(ctx, &models.SignOut{
		Soldiers:    d.Soldiers,
		Destination: d.Destination,
		Phone:       d.Phone,
		Categories:  d.Categories,
		DateTime:    timex.NewISOTime(s.now()),
		Notes:       d.Notes,
		DS:          operator,
	})
	if err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}

	s.logger.Info(ctx, "sign-out",
		"id", created.ID,
		"soldiers", strings.Join(created.Soldiers, ", "),
		"destination", created.Destination,
		"phone", created.Phone,
		"ds", operator)
	return created, nil
}

// Update replaces the editable fields of entry id. The sign-out time is kept.
func (s *ledgerService) Update(ctx context.Context, operator, id string, d models.Draft) (*models.SignOut, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.Normalize()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := existing.Clone()
	upd.Soldiers = d.Soldiers
	upd.Destination = d.Destination
	upd.Phone = d.Phone
	upd.Categories = d.Categories
	upd.Notes = d.Notes
	upd.DS = operator
	lm := timex.NewISOTime(s.now())
	upd.LastModified = &lm

	if err := s.repo.Update(ctx, upd); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}

	s.logger.Info(ctx, "sign-out updated",
		"id", id,
		"soldiers", strings.Join(upd.Soldiers, ", "),
		"ds", operator)
	return upd, nil
}

// SignIn removes entry id from the ledger: the soldiers are back.
func (s *ledgerService) SignIn(ctx context.Context, operator, id string) (*models.SignOut, error) {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Warn(ctx, "sign-in of unknown entry", "id", id, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "sign-in",
		"id", id,
		"soldiers", strings.Join(removed.Soldiers, ", "),
		"duration", models.FormatDuration(removed.DateTime, s.now()),
		"ds", operator)
	return removed, nil
}

func (s *ledgerService) Get(ctx context.Context, id string) (*models.SignOut, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ledgerService) List(ctx context.Context) ([]models.SignOut, error) {
	return s.repo.GetAll(ctx)
}

// Search filters by term and, when key is set, sorts the result.
func (s *ledgerService) Search(ctx context.Context, term string, key models.SortKey, reverse bool) ([]models.SignOut, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	found := models.Search(all, term)
	if key == "" {
		return found, nil
	}
	return models.Sort(found, key, reverse), nil
}

func (s *ledgerService) Stats(ctx context.Context) (models.Statistics, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return models.Statistics{}, err
	}
	return models.ComputeStatistics(all), nil
}

// ExportDocument renders the current ledger in the JSON document format,
// whatever backend stores it.
func (s *ledgerService) ExportDocument(ctx context.Context) ([]byte, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return signouts.EncodeDocument(&models.Document{
		LastUpdated: timex.NewISOTime(s.now()),
		SignOuts:    all,
	})
}

func (s *ledgerService) Export(ctx context.Context, path string) error {
	b, err := s.ExportDocument(ctx)
	if err != nil {
		return err
	}
	if err := filex.WriteAtomic(path, b); err != nil {
		return err
	}
	s.logger.Info(ctx, "export", "path", path)
	return nil
}
