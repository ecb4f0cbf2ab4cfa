// Package firewall manages firewall address lists on MikroTik routers.
package firewall

import (
	"sort"

	"github.com/Munger/mikro-manager/pkg/resource"
	"github.com/Munger/mikro-manager/pkg/routeros"
	"github.com/Munger/mikro-manager/pkg/util"
)

// Path is the RouterOS API path for firewall address lists.
const Path = "/ip/firewall/address-list"

// Module is the access-control module name.
const Module = "firewall"

// ListEntry is one address-list member.
type ListEntry struct {
	ID           string `json:"id,omitempty"`
	List         string `json:"list"`
	Address      string `json:"address"`
	Timeout      string `json:"timeout,omitempty"`
	CreationTime string `json:"creation-time,omitempty"`
	Dynamic      bool   `json:"dynamic"`
	Comment      string `json:"comment,omitempty"`
	Disabled     bool   `json:"disabled"`
}

func entryFromRecord(rec routeros.Record) ListEntry {
	return ListEntry{
		ID:           rec[".id"],
		List:         rec["list"],
		Address:      rec["address"],
		Timeout:      rec["timeout"],
		CreationTime: rec["creation-time"],
		Dynamic:      rec.Bool("dynamic"),
		Comment:      rec["comment"],
		Disabled:     rec.Bool("disabled"),
	}
}

var exportColumns = []string{
	"id", "list", "address", "timeout", "creation-time", "dynamic",
	"comment", "disabled",
}

// Manager manages the address-list table of one router.
type Manager struct {
	res *resource.Manager
}

// NewManager creates an address-list manager over an API connection.
func NewManager(conn routeros.Conn) *Manager {
	return &Manager{
		res: resource.NewManager(conn, Path).
			WithKeyField("address").
			WithSearchFields("list", "address"),
	}
}

// List returns address-list entries sorted by list then address. When
// list is non-empty only members of that list are returned, filtered
// on the router.
func (m *Manager) List(list string) ([]ListEntry, error) {
	queries := map[string]string{}
	if list != "" {
		queries["list"] = list
	}
	records, err := m.res.ListWhere(queries)
	if err != nil {
		return nil, err
	}
	entries := make([]ListEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entryFromRecord(rec))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].List != entries[j].List {
			return entries[i].List < entries[j].List
		}
		return entries[i].Address < entries[j].Address
	})
	return entries, nil
}

// Find returns the entry for the given (list, address) pair.
func (m *Manager) Find(list, address string) (*ListEntry, bool, error) {
	rec, found, err := m.res.Find(map[string]string{"list": list, "address": address})
	if err != nil || !found {
		return nil, false, err
	}
	entry := entryFromRecord(rec)
	return &entry, true, nil
}

// Add appends an address to a list. List and address are required and
// the pair must not already exist.
func (m *Manager) Add(entry ListEntry) (string, error) {
	v := &util.ValidationBuilder{}
	v.Add(entry.List != "", "list is required")
	v.Add(entry.Address != "", "address is required")
	if err := v.Build(); err != nil {
		return "", err
	}

	if _, found, err := m.Find(entry.List, entry.Address); err != nil {
		return "", err
	} else if found {
		return "", util.NewAlreadyExistsError("address-list entry", entry.List+"/"+entry.Address)
	}

	attrs := map[string]string{
		"list":    entry.List,
		"address": entry.Address,
	}
	if entry.Timeout != "" {
		attrs["timeout"] = entry.Timeout
	}
	if entry.Comment != "" {
		attrs["comment"] = entry.Comment
	}
	if entry.Disabled {
		attrs["disabled"] = "yes"
	}
	return m.res.Add(attrs)
}

// Delete removes an address from a list.
func (m *Manager) Delete(list, address string) error {
	entry, found, err := m.Find(list, address)
	if err != nil {
		return err
	}
	if !found {
		return util.NewNotFoundError("address-list entry", list+"/"+address)
	}
	return m.res.Remove(entry.ID)
}

// Enable re-enables an address-list entry.
func (m *Manager) Enable(list, address string) error {
	return m.setDisabled(list, address, "no")
}

// Disable disables an address-list entry without removing it.
func (m *Manager) Disable(list, address string) error {
	return m.setDisabled(list, address, "yes")
}

func (m *Manager) setDisabled(list, address, value string) error {
	entry, found, err := m.Find(list, address)
	if err != nil {
		return err
	}
	if !found {
		return util.NewNotFoundError("address-list entry", list+"/"+address)
	}
	return m.res.Update(entry.ID, map[string]string{"disabled": value})
}

// Search returns entries whose list name or address matches the
// wildcard pattern.
func (m *Manager) Search(pattern string) ([]ListEntry, error) {
	records, err := m.res.Search(pattern, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]ListEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entryFromRecord(rec))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].List != entries[j].List {
			return entries[i].List < entries[j].List
		}
		return entries[i].Address < entries[j].Address
	})
	return entries, nil
}

// Export renders the address-list table in the given format.
func (m *Manager) Export(format resource.Format) ([]byte, error) {
	return m.res.Export(format, exportColumns)
}

// Import merges entries, keyed on address.
func (m *Manager) Import(data []byte, format resource.Format, overwrite bool) (resource.Stats, error) {
	return m.res.Import(data, format, overwrite)
}
