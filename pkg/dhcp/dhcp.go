// Package dhcp manages DHCP server leases on MikroTik routers.
package dhcp

import (
	"sort"

	"github.com/Munger/mikro-manager/pkg/resource"
	"github.com/Munger/mikro-manager/pkg/routeros"
	"github.com/Munger/mikro-manager/pkg/util"
)

// Path is the RouterOS API path for DHCP server leases.
const Path = "/ip/dhcp-server/lease"

// Module is the access-control module name.
const Module = "dhcp"

// Lease is one DHCP server lease.
type Lease struct {
	ID         string `json:"id,omitempty"`
	Address    string `json:"address"`
	MACAddress string `json:"mac-address"`
	ClientID   string `json:"client-id,omitempty"`
	Server     string `json:"server,omitempty"`
	HostName   string `json:"host-name,omitempty"`
	Status     string `json:"status,omitempty"`
	Dynamic    bool   `json:"dynamic"`
	Comment    string `json:"comment,omitempty"`
	Disabled   bool   `json:"disabled"`
}

func leaseFromRecord(rec routeros.Record) Lease {
	return Lease{
		ID:         rec[".id"],
		Address:    rec["address"],
		MACAddress: rec["mac-address"],
		ClientID:   rec["client-id"],
		Server:     rec["server"],
		HostName:   rec["host-name"],
		Status:     rec["status"],
		Dynamic:    rec.Bool("dynamic"),
		Comment:    rec["comment"],
		Disabled:   rec.Bool("disabled"),
	}
}

var exportColumns = []string{
	"id", "address", "mac-address", "client-id", "server", "host-name",
	"status", "dynamic", "comment", "disabled",
}

// Manager manages the DHCP lease table of one router.
type Manager struct {
	res *resource.Manager
}

// NewManager creates a DHCP lease manager over an API connection.
func NewManager(conn routeros.Conn) *Manager {
	return &Manager{
		res: resource.NewManager(conn, Path).
			WithKeyField("mac-address").
			WithSearchFields("address", "mac-address", "host-name"),
	}
}

// List returns all leases sorted by address. When server is non-empty
// only leases of that DHCP server instance are returned, filtered on
// the router.
func (m *Manager) List(server string) ([]Lease, error) {
	queries := map[string]string{}
	if server != "" {
		queries["server"] = server
	}
	records, err := m.res.ListWhere(queries)
	if err != nil {
		return nil, err
	}
	leases := make([]Lease, 0, len(records))
	for _, rec := range records {
		leases = append(leases, leaseFromRecord(rec))
	}
	sort.Slice(leases, func(i, j int) bool { return leases[i].Address < leases[j].Address })
	return leases, nil
}

// FindByMAC returns the lease with the given MAC address.
func (m *Manager) FindByMAC(mac string) (*Lease, bool, error) {
	rec, found, err := m.res.Find(map[string]string{"mac-address": mac})
	if err != nil || !found {
		return nil, false, err
	}
	lease := leaseFromRecord(rec)
	return &lease, true, nil
}

// FindByAddress returns the lease with the given IP address.
func (m *Manager) FindByAddress(address string) (*Lease, bool, error) {
	rec, found, err := m.res.Find(map[string]string{"address": address})
	if err != nil || !found {
		return nil, false, err
	}
	lease := leaseFromRecord(rec)
	return &lease, true, nil
}

// Add creates a static lease. Address and MAC address are required and
// the MAC must not already hold a lease.
func (m *Manager) Add(lease Lease) (string, error) {
	v := &util.ValidationBuilder{}
	v.Add(lease.Address != "", "address is required")
	v.Add(lease.MACAddress != "", "mac-address is required")
	if err := v.Build(); err != nil {
		return "", err
	}

	if _, found, err := m.FindByMAC(lease.MACAddress); err != nil {
		return "", err
	} else if found {
		return "", util.NewAlreadyExistsError("lease", lease.MACAddress)
	}

	attrs := map[string]string{
		"address":     lease.Address,
		"mac-address": lease.MACAddress,
	}
	if lease.Server != "" {
		attrs["server"] = lease.Server
	}
	if lease.ClientID != "" {
		attrs["client-id"] = lease.ClientID
	}
	if lease.Comment != "" {
		attrs["comment"] = lease.Comment
	}
	if lease.Disabled {
		attrs["disabled"] = "yes"
	}
	return m.res.Add(attrs)
}

// MakeStatic converts the dynamic lease of the given MAC into a static
// one by recreating it with its current address.
func (m *Manager) MakeStatic(mac string) error {
	lease, found, err := m.FindByMAC(mac)
	if err != nil {
		return err
	}
	if !found {
		return util.NewNotFoundError("lease", mac)
	}
	if !lease.Dynamic {
		return util.NewValidationError("lease for " + mac + " is already static")
	}

	if err := m.res.Remove(lease.ID); err != nil {
		return err
	}
	attrs := map[string]string{
		"address":     lease.Address,
		"mac-address": lease.MACAddress,
	}
	if lease.Server != "" {
		attrs["server"] = lease.Server
	}
	if lease.Comment != "" {
		attrs["comment"] = lease.Comment
	}
	_, err = m.res.Add(attrs)
	return err
}

// Delete removes the lease identified by MAC or, failing that, by IP
// address.
func (m *Manager) Delete(key string) error {
	lease, found, err := m.FindByMAC(key)
	if err != nil {
		return err
	}
	if !found {
		lease, found, err = m.FindByAddress(key)
		if err != nil {
			return err
		}
	}
	if !found {
		return util.NewNotFoundError("lease", key)
	}
	return m.res.Remove(lease.ID)
}

// Enable re-enables the lease of the given MAC.
func (m *Manager) Enable(mac string) error {
	return m.setDisabled(mac, "no")
}

// Disable disables the lease of the given MAC.
func (m *Manager) Disable(mac string) error {
	return m.setDisabled(mac, "yes")
}

func (m *Manager) setDisabled(mac, value string) error {
	lease, found, err := m.FindByMAC(mac)
	if err != nil {
		return err
	}
	if !found {
		return util.NewNotFoundError("lease", mac)
	}
	return m.res.Update(lease.ID, map[string]string{"disabled": value})
}

// Search returns leases whose address, MAC, or host name matches the
// wildcard pattern, sorted by address.
func (m *Manager) Search(pattern string) ([]Lease, error) {
	records, err := m.res.Search(pattern, nil)
	if err != nil {
		return nil, err
	}
	leases := make([]Lease, 0, len(records))
	for _, rec := range records {
		leases = append(leases, leaseFromRecord(rec))
	}
	sort.Slice(leases, func(i, j int) bool { return leases[i].Address < leases[j].Address })
	return leases, nil
}

// Export renders the lease table in the given format.
func (m *Manager) Export(format resource.Format) ([]byte, error) {
	return m.res.Export(format, exportColumns)
}

// Import merges leases into the table, keyed on MAC address.
func (m *Manager) Import(data []byte, format resource.Format, overwrite bool) (resource.Stats, error) {
	return m.res.Import(data, format, overwrite)
}
