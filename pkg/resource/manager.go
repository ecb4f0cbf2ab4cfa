// Package resource implements the generic management layer shared by
// all RouterOS resource types: listing, lookup, mutation, wildcard
// search, and bulk export/import with merge semantics. Typed managers
// (dns, dhcp, firewall) build on it.
package resource

import (
	"fmt"
	"sort"

	"github.com/Munger/mikro-manager/pkg/routeros"
	"github.com/Munger/mikro-manager/pkg/util"
)

// Manager performs CRUD operations on one RouterOS resource path.
type Manager struct {
	conn         routeros.Conn
	path         string
	keyField     string
	searchFields []string
}

// NewManager creates a manager for an API path such as /ip/dns/static.
// The key field (default "name") matches existing entries on import.
func NewManager(conn routeros.Conn, path string) *Manager {
	return &Manager{conn: conn, path: path, keyField: "name"}
}

// WithKeyField sets the field used to match existing entries on import.
func (m *Manager) WithKeyField(field string) *Manager {
	m.keyField = field
	return m
}

// WithSearchFields sets the default fields searched by Search.
func (m *Manager) WithSearchFields(fields ...string) *Manager {
	m.searchFields = fields
	return m
}

// Path returns the API path this manager operates on.
func (m *Manager) Path() string {
	return m.path
}

// KeyField returns the import key field.
func (m *Manager) KeyField() string {
	return m.keyField
}

// List returns all entries at the resource path.
func (m *Manager) List() ([]routeros.Record, error) {
	return m.conn.Print(m.path)
}

// ListWhere returns entries whose attributes equal every query,
// filtered on the router.
func (m *Manager) ListWhere(queries map[string]string) ([]routeros.Record, error) {
	if len(queries) == 0 {
		return m.List()
	}
	return m.conn.PrintWhere(m.path, queries)
}

// Get returns the entry with the given internal ID.
func (m *Manager) Get(id string) (routeros.Record, bool, error) {
	return m.Find(map[string]string{".id": id})
}

// Find returns the first entry whose fields all equal the criteria.
func (m *Manager) Find(criteria map[string]string) (routeros.Record, bool, error) {
	entries, err := m.List()
	if err != nil {
		return nil, false, err
	}
	for _, entry := range entries {
		match := true
		for k, v := range criteria {
			if entry[k] != v {
				match = false
				break
			}
		}
		if match {
			return entry, true, nil
		}
	}
	return nil, false, nil
}

// Add creates a new entry and returns its ID.
func (m *Manager) Add(attrs map[string]string) (string, error) {
	return m.conn.Add(m.path, attrs)
}

// Update modifies fields of an existing entry.
func (m *Manager) Update(id string, attrs map[string]string) error {
	return m.conn.Set(m.path, id, attrs)
}

// Remove deletes an entry by ID.
func (m *Manager) Remove(id string) error {
	return m.conn.Remove(m.path, id)
}

// Enable re-enables a disabled entry.
func (m *Manager) Enable(id string) error {
	return m.Update(id, map[string]string{"disabled": "false"})
}

// Disable disables an entry without deleting it.
func (m *Manager) Disable(id string) error {
	return m.Update(id, map[string]string{"disabled": "true"})
}

// SetComment sets the comment on an entry.
func (m *Manager) SetComment(id, comment string) error {
	return m.Update(id, map[string]string{"comment": comment})
}

// Search returns entries with a field matching the wildcard pattern
// (supports * and ?). Fields defaults to the manager's search fields,
// else every field of the listing.
func (m *Manager) Search(pattern string, fields []string) ([]routeros.Record, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		fields = m.searchFields
	}
	if len(fields) == 0 && len(entries) > 0 {
		for k := range entries[0] {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}

	matching := make([]routeros.Record, 0)
	for _, entry := range entries {
		for _, field := range fields {
			value, ok := entry[field]
			if !ok {
				continue
			}
			if util.WildcardMatch(pattern, value) {
				matching = append(matching, entry)
				break
			}
		}
	}
	return matching, nil
}

// Stats counts the outcome of an import.
type Stats struct {
	Added   int
	Updated int
	Skipped int
}

func (s Stats) String() string {
	return fmt.Sprintf("added: %d, updated: %d, skipped: %d", s.Added, s.Updated, s.Skipped)
}

// Export renders all entries in the given format. Columns fix the CSV
// column order; when empty the columns come from the first entry.
func (m *Manager) Export(format Format, columns []string) ([]byte, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}
	return Marshal(entries, format, columns)
}

// Import merges entries parsed from data into the resource. Entries
// without the key field are skipped. Existing entries (matched on the
// key field) are updated when overwrite is set, otherwise skipped.
// Updates pass the entry's fields verbatim, so an empty field clears
// the stored value; adds drop empty fields.
func (m *Manager) Import(data []byte, format Format, overwrite bool) (Stats, error) {
	entries, err := Unmarshal(data, format)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, entry := range entries {
		// Internal fields never round-trip
		delete(entry, ".id")
		delete(entry, "id")

		keyValue := entry[m.keyField]
		if keyValue == "" {
			stats.Skipped++
			continue
		}

		existing, found, err := m.Find(map[string]string{m.keyField: keyValue})
		if err != nil {
			return stats, err
		}
		if found {
			if !overwrite {
				stats.Skipped++
				continue
			}
			if err := m.Update(existing.ID(), entry); err != nil {
				return stats, fmt.Errorf("updating %s '%s': %w", m.keyField, keyValue, err)
			}
			stats.Updated++
			continue
		}

		attrs := make(map[string]string, len(entry))
		for k, v := range entry {
			if v != "" {
				attrs[k] = v
			}
		}
		if _, err := m.Add(attrs); err != nil {
			return stats, fmt.Errorf("adding %s '%s': %w", m.keyField, keyValue, err)
		}
		stats.Added++
	}
	return stats, nil
}
