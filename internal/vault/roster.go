package vault

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/signout/internal/cryptox"
)

// DefaultAccount is one entry of the roster a new vault starts with.
type DefaultAccount struct {
	ID  string
	PIN string
}

// DefaultRoster is written by EnsureInitialized when no vault file exists.
// The PINs are well known and are expected to be changed after installation.
var DefaultRoster = []DefaultAccount{
	{ID: "DS Smith", PIN: "1234"},
	{ID: "DS Johnson", PIN: "2345"},
	{ID: "DS Williams", PIN: "3456"},
	{ID: "DS Brown", PIN: "4567"},
	{ID: "DS Davis", PIN: "5678"},
}

// roster is the decrypted payload: identifier -> PIN digest, in insertion order.
type roster struct {
	ids    []string
	hashes map[string]string
}

func newRoster() *roster {
	return &roster{hashes: make(map[string]string)}
}

func defaultRoster() *roster {
	r := newRoster()
	for _, a := range DefaultRoster {
		r.set(a.ID, cryptox.HashPIN(a.PIN))
	}
	return r
}

// set inserts or replaces; a replaced identifier keeps its position.
func (r *roster) set(id, hash string) {
	if _, ok := r.hashes[id]; !ok {
		r.ids = append(r.ids, id)
	}
	r.hashes[id] = hash
}

func (r *roster) get(id string) (string, bool) {
	h, ok := r.hashes[id]
	return h, ok
}

func (r *roster) delete(id string) bool {
	if _, ok := r.hashes[id]; !ok {
		return false
	}
	delete(r.hashes, id)
	for i, v := range r.ids {
		if v == id {
			r.ids = append(r.ids[:i], r.ids[i+1:]...)
			break
		}
	}
	return true
}

func (r *roster) list() []string {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// MarshalJSON writes {"id": "hash", ...} preserving order.
func (r *roster) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range r.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.hashes[id])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of strings keeping key order. Entries with
// an empty identifier are dropped; a repeated key keeps its first position and
// its last value.
func (r *roster) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("roster: expected object, got %v", tok)
	}

	out := newRoster()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("roster: unexpected key %v", tok)
		}
		var hash string
		if err := dec.Decode(&hash); err != nil {
			return fmt.Errorf("roster: value for %q: %w", id, err)
		}
		if id == "" {
			continue
		}
		out.set(id, hash)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = *out
	return nil
}
