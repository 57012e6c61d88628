package signouts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/signout/internal/common"
	"github.com/dmitrijs2005/signout/internal/filex"
	"github.com/dmitrijs2005/signout/internal/models"
	"github.com/dmitrijs2005/signout/internal/timex"
)

// JSONRepository stores the ledger as a models.Document in a single file that
// is rewritten atomically on every change.
type JSONRepository struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewJSONRepository opens the document at path, creating an empty one when
// the file does not exist.
func NewJSONRepository(path string) (*JSONRepository, error) {
	r := &JSONRepository{path: path, now: time.Now}

	ok, err := filex.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("stat ledger: %w", err)
	}
	if !ok {
		if err := r.save(&models.Document{SignOuts: []models.SignOut{}}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Path returns the document location.
func (r *JSONRepository) Path() string {
	return r.path
}

func (r *JSONRepository) Create(_ context.Context, s *models.SignOut) (*models.SignOut, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	out := s.Clone()
	out.ID = models.NextID(doc.SignOuts)
	out.CreatedAt = timex.NewISOTime(r.now())
	doc.SignOuts = append(doc.SignOuts, *out)

	if err := r.save(doc); err != nil {
		return nil, err
	}
	return out.Clone(), nil
}

func (r *JSONRepository) Update(_ context.Context, s *models.SignOut) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}

	i := indexOf(doc.SignOuts, s.ID)
	if i < 0 {
		return notFound(s.ID)
	}
	upd := s.Clone()
	upd.CreatedAt = doc.SignOuts[i].CreatedAt
	doc.SignOuts[i] = *upd

	return r.save(doc)
}

func (r *JSONRepository) Delete(_ context.Context, id string) (*models.SignOut, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(doc.SignOuts, id)
	if i < 0 {
		return nil, notFound(id)
	}
	removed := doc.SignOuts[i]
	doc.SignOuts = slices.Delete(doc.SignOuts, i, i+1)

	if err := r.save(doc); err != nil {
		return nil, err
	}
	return &removed, nil
}

func (r *JSONRepository) GetByID(_ context.Context, id string) (*models.SignOut, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(doc.SignOuts, id)
	if i < 0 {
		return nil, notFound(id)
	}
	return doc.SignOuts[i].Clone(), nil
}

func (r *JSONRepository) GetAll(_ context.Context) ([]models.SignOut, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return doc.SignOuts, nil
}

func (r *JSONRepository) load() (*models.Document, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var doc models.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", r.path, err)
	}
	if doc.SignOuts == nil {
		doc.SignOuts = []models.SignOut{}
	}
	return &doc, nil
}

func (r *JSONRepository) save(doc *models.Document) error {
	doc.LastUpdated = timex.NewISOTime(r.now())

	b, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	if err := filex.WriteAtomic(r.path, b); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// EncodeDocument renders doc the way the ledger file is written: two-space
// indentation, non-ASCII and HTML characters left as is.
func EncodeDocument(doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return buf.Bytes(), nil
}

func indexOf(list []models.SignOut, id string) int {
	return slices.IndexFunc(list, func(s models.SignOut) bool { return s.ID == id })
}

func notFound(id string) error {
	return fmt.Errorf("sign-out %s: %w", id, common.ErrorNotFound)
}
