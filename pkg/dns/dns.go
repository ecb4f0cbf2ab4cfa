// Package dns manages DNS static entries on MikroTik routers.
package dns

import (
	"fmt"
	"sort"

	"github.com/Munger/mikro-manager/pkg/resource"
	"github.com/Munger/mikro-manager/pkg/routeros"
	"github.com/Munger/mikro-manager/pkg/util"
)

// Path is the RouterOS API path for DNS static entries.
const Path = "/ip/dns/static"

// Module is the access-control module name.
const Module = "dns"

// Default field values applied by RouterOS
const (
	DefaultType = "A"
	DefaultTTL  = "1d"
)

// RecordTypes lists the supported DNS record types.
var RecordTypes = []string{
	"A", "AAAA", "CNAME", "MX", "TXT", "NS", "SRV", "FWD", "REGEXP", "NXDOMAIN",
}

// Entry is one DNS static entry. Field tags match the RouterOS
// attribute names so entries round-trip through export/import.
type Entry struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Address      string `json:"address,omitempty"`
	CName        string `json:"cname,omitempty"`
	MXPreference string `json:"mx-preference,omitempty"`
	MXExchange   string `json:"mx-exchange,omitempty"`
	Text         string `json:"text,omitempty"`
	NS           string `json:"ns,omitempty"`
	SrvPriority  string `json:"srv-priority,omitempty"`
	SrvWeight    string `json:"srv-weight,omitempty"`
	SrvPort      string `json:"srv-port,omitempty"`
	SrvTarget    string `json:"srv-target,omitempty"`
	ForwardTo    string `json:"forward-to,omitempty"`
	Regexp       string `json:"regexp,omitempty"`
	TTL          string `json:"ttl"`
	Comment      string `json:"comment,omitempty"`
	Disabled     bool   `json:"disabled"`
}

// Target returns the value an entry points at, by record type.
func (e *Entry) Target() string {
	switch e.Type {
	case "CNAME":
		return e.CName
	case "MX":
		return e.MXExchange
	case "NS":
		return e.NS
	case "SRV":
		return e.SrvTarget
	case "FWD":
		return e.ForwardTo
	case "REGEXP":
		return e.Regexp
	case "TXT":
		return e.Text
	case "NXDOMAIN":
		return ""
	default:
		return e.Address
	}
}

func entryFromRecord(rec routeros.Record) Entry {
	return Entry{
		ID:           rec[".id"],
		Name:         rec["name"],
		Type:         util.CoalesceString(rec["type"], DefaultType),
		Address:      rec["address"],
		CName:        rec["cname"],
		MXPreference: rec["mx-preference"],
		MXExchange:   rec["mx-exchange"],
		Text:         rec["text"],
		NS:           rec["ns"],
		SrvPriority:  rec["srv-priority"],
		SrvWeight:    rec["srv-weight"],
		SrvPort:      rec["srv-port"],
		SrvTarget:    rec["srv-target"],
		ForwardTo:    rec["forward-to"],
		Regexp:       rec["regexp"],
		TTL:          util.CoalesceString(rec["ttl"], DefaultTTL),
		Comment:      rec["comment"],
		Disabled:     rec.Bool("disabled"),
	}
}

// addAttrs builds the RouterOS attribute set for a new entry,
// including only the fields the record type uses.
func (e *Entry) addAttrs() map[string]string {
	attrs := map[string]string{
		"name": e.Name,
		"type": e.Type,
		"ttl":  e.TTL,
	}
	switch e.Type {
	case "A", "AAAA":
		attrs["address"] = e.Address
	case "CNAME":
		attrs["cname"] = e.CName
	case "MX":
		attrs["mx-exchange"] = e.MXExchange
		if e.MXPreference != "" {
			attrs["mx-preference"] = e.MXPreference
		}
	case "TXT":
		attrs["text"] = e.Text
	case "NS":
		attrs["ns"] = e.NS
	case "SRV":
		attrs["srv-target"] = e.SrvTarget
		if e.SrvPriority != "" {
			attrs["srv-priority"] = e.SrvPriority
		}
		if e.SrvWeight != "" {
			attrs["srv-weight"] = e.SrvWeight
		}
		if e.SrvPort != "" {
			attrs["srv-port"] = e.SrvPort
		}
	case "FWD":
		attrs["forward-to"] = e.ForwardTo
	case "REGEXP":
		attrs["regexp"] = e.Regexp
	}
	if e.Comment != "" {
		attrs["comment"] = e.Comment
	}
	if e.Disabled {
		attrs["disabled"] = "yes"
	}
	return attrs
}

// validate checks the required fields for the entry's record type.
func (e *Entry) validate() error {
	v := &util.ValidationBuilder{}
	v.Add(e.Name != "", "name is required")

	switch e.Type {
	case "A", "AAAA":
		v.Add(e.Address != "", fmt.Sprintf("%s record requires an address", e.Type))
	case "CNAME":
		v.Add(e.CName != "", "CNAME record requires a cname target")
	case "MX":
		v.Add(e.MXExchange != "", "MX record requires mx-exchange")
	case "TXT":
		v.Add(e.Text != "", "TXT record requires text content")
	case "NS":
		v.Add(e.NS != "", "NS record requires a name server")
	case "SRV":
		v.Add(e.SrvTarget != "", "SRV record requires a target")
	case "FWD":
		v.Add(e.ForwardTo != "", "FWD record requires forward-to server")
	case "REGEXP":
		v.Add(e.Regexp != "", "REGEXP record requires a regular expression")
	case "NXDOMAIN":
		// no extra fields
	default:
		v.AddErrorf("unknown record type '%s'", e.Type)
	}
	return v.Build()
}

// exportColumns fixes the CSV column order for export.
var exportColumns = []string{
	"id", "name", "type", "address", "cname", "mx-preference", "mx-exchange",
	"text", "ns", "srv-priority", "srv-weight", "srv-port", "srv-target",
	"forward-to", "regexp", "ttl", "comment", "disabled",
}

// Manager manages the DNS static table of one router.
type Manager struct {
	res *resource.Manager
}

// NewManager creates a DNS manager over an API connection.
func NewManager(conn routeros.Conn) *Manager {
	return &Manager{
		res: resource.NewManager(conn, Path).WithSearchFields("name", "address"),
	}
}

// List returns all DNS static entries sorted by name.
func (m *Manager) List() ([]Entry, error) {
	records, err := m.res.List()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entryFromRecord(rec))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Find returns the entry with the given name.
func (m *Manager) Find(name string) (*Entry, bool, error) {
	rec, found, err := m.res.Find(map[string]string{"name": name})
	if err != nil || !found {
		return nil, false, err
	}
	entry := entryFromRecord(rec)
	return &entry, true, nil
}

// Add creates a new entry after validating the record type's required
// fields. Duplicate names are rejected.
func (m *Manager) Add(e Entry) (string, error) {
	if e.Type == "" {
		e.Type = DefaultType
	}
	if e.TTL == "" {
		e.TTL = DefaultTTL
	}
	if err := e.validate(); err != nil {
		return "", err
	}

	if _, found, err := m.Find(e.Name); err != nil {
		return "", err
	} else if found {
		return "", util.NewAlreadyExistsError("DNS entry", e.Name)
	}

	return m.res.Add(e.addAttrs())
}

// Update modifies fields of the named entry. Attrs use RouterOS
// attribute names ("address", "ttl", ...).
func (m *Manager) Update(name string, attrs map[string]string) error {
	entry, found, err := m.Find(name)
	if err != nil {
		return err
	}
	if !found {
		return util.NewNotFoundError("DNS entry", name)
	}
	return m.res.Update(entry.ID, attrs)
}

// Delete removes the named entry.
func (m *Manager) Delete(name string) error {
	entry, found, err := m.Find(name)
	if err != nil {
		return err
	}
	if !found {
		return util.NewNotFoundError("DNS entry", name)
	}
	return m.res.Remove(entry.ID)
}

// Enable re-enables the named entry.
func (m *Manager) Enable(name string) error {
	return m.Update(name, map[string]string{"disabled": "no"})
}

// Disable disables the named entry without deleting it.
func (m *Manager) Disable(name string) error {
	return m.Update(name, map[string]string{"disabled": "yes"})
}

// Search returns entries whose name or address matches the wildcard
// pattern, sorted by name.
func (m *Manager) Search(pattern string) ([]Entry, error) {
	records, err := m.res.Search(pattern, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entryFromRecord(rec))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Duplicate reports a name defined more than once.
type Duplicate struct {
	Name    string
	Entries []Entry
}

// Conflict reports one address claimed by several names.
type Conflict struct {
	Address string
	Names   []string
}

// Report is the result of validating the static table.
type Report struct {
	Duplicates []Duplicate
	Conflicts  []Conflict
}

// Clean reports whether validation found no issues.
func (r *Report) Clean() bool {
	return len(r.Duplicates) == 0 && len(r.Conflicts) == 0
}

// Validate checks the static table for duplicate names and for
// addresses shared by different names. Entries without an address
// (TXT, NS, ...) are excluded from the conflict check.
func (m *Manager) Validate() (*Report, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}

	report := &Report{}

	byName := make(map[string]Entry)
	for _, entry := range entries {
		if first, seen := byName[entry.Name]; seen {
			report.Duplicates = append(report.Duplicates, Duplicate{
				Name:    entry.Name,
				Entries: []Entry{first, entry},
			})
			continue
		}
		byName[entry.Name] = entry
	}

	byAddress := make(map[string]Entry)
	for _, entry := range entries {
		if entry.Address == "" {
			continue
		}
		if first, seen := byAddress[entry.Address]; seen && first.Name != entry.Name {
			report.Conflicts = append(report.Conflicts, Conflict{
				Address: entry.Address,
				Names:   []string{first.Name, entry.Name},
			})
			continue
		}
		byAddress[entry.Address] = entry
	}

	return report, nil
}

// Export renders the static table in the given format.
func (m *Manager) Export(format resource.Format) ([]byte, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}

	records := make([]routeros.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, routeros.Record{
			"id": e.ID, "name": e.Name, "type": e.Type, "address": e.Address,
			"cname": e.CName, "mx-preference": e.MXPreference, "mx-exchange": e.MXExchange,
			"text": e.Text, "ns": e.NS, "srv-priority": e.SrvPriority,
			"srv-weight": e.SrvWeight, "srv-port": e.SrvPort, "srv-target": e.SrvTarget,
			"forward-to": e.ForwardTo, "regexp": e.Regexp, "ttl": e.TTL,
			"comment": e.Comment, "disabled": fmt.Sprintf("%t", e.Disabled),
		})
	}
	return resource.Marshal(records, format, exportColumns)
}

// Import merges entries into the static table, keyed on name.
func (m *Manager) Import(data []byte, format resource.Format, overwrite bool) (resource.Stats, error) {
	return m.res.Import(data, format, overwrite)
}
