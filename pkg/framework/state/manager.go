// Package state saves and restores parameter values in a compact binary form.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/loopdrift/loopdrift/pkg/framework/param"
)

// Magic is the header every state blob starts with.
const Magic = "LDRIFT"

// Version is the current state format version.
const Version uint32 = 1

// ErrInvalidFormat is returned when a blob does not start with Magic.
var ErrInvalidFormat = errors.New("state: invalid format")

// Manager handles state saving and loading for a registry.
//
// Layout (little endian): Magic, uint32 version, int32 count, then count
// pairs of uint32 parameter id and float64 normalized value.
type Manager struct {
	registry *param.Registry
}

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{registry: registry}
}

// Save writes every parameter's normalized value.
func (m *Manager) Save(w io.Writer) error {
	params := m.registry.All()

	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("state: write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, Version); err != nil {
		return fmt.Errorf("state: write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return fmt.Errorf("state: write count: %w", err)
	}

	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return fmt.Errorf("state: write parameter %d: %w", p.ID, err)
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return fmt.Errorf("state: write parameter %d: %w", p.ID, err)
		}
	}
	return nil
}

// Load restores parameter values. Unknown ids are skipped. Values are
// applied only after the whole blob has been read, so a truncated blob
// leaves the registry untouched.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("state: read header: %w", err)
	}
	if string(header) != Magic {
		return ErrInvalidFormat
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("state: read version: %w", err)
	}
	if version > Version {
		return fmt.Errorf("state: version %d is newer than supported version %d", version, Version)
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("state: read count: %w", err)
	}
	if count < 0 {
		return fmt.Errorf("%w: negative parameter count %d", ErrInvalidFormat, count)
	}

	type entry struct {
		ID    uint32
		Value float64
	}
	entries := make([]entry, 0, min(int(count), 256))
	for i := int32(0); i < count; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e); err != nil {
			return fmt.Errorf("state: read parameter %d of %d: %w", i+1, count, err)
		}
		entries = append(entries, e)
	}

	for _, e := range entries {
		if p := m.registry.Get(e.ID); p != nil {
			p.SetValue(e.Value)
		}
	}
	return nil
}
