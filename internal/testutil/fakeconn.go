// Package testutil provides test doubles and fixtures shared by the
// package tests.
package testutil

import (
	"fmt"

	"github.com/Munger/mikro-manager/pkg/routeros"
)

// FakeConn is an in-memory routeros.Conn. Records are kept per API
// path and IDs are assigned RouterOS-style (*1, *2, ...).
type FakeConn struct {
	Records map[string][]routeros.Record

	// Err, when set, is returned by every operation.
	Err error

	// Ops records the mutating operations performed, e.g.
	// "add /ip/dns/static" or "set /ip/dns/static *1".
	Ops []string

	nextID int
}

// NewFakeConn creates an empty fake connection.
func NewFakeConn() *FakeConn {
	return &FakeConn{Records: make(map[string][]routeros.Record)}
}

// Seed adds records with assigned IDs (*1, *2, ... in order).
func (f *FakeConn) Seed(path string, records ...routeros.Record) {
	for _, attrs := range records {
		f.add(path, attrs)
	}
}

func (f *FakeConn) add(path string, attrs map[string]string) string {
	f.nextID++
	id := fmt.Sprintf("*%d", f.nextID)
	record := routeros.Record{".id": id}
	for k, v := range attrs {
		record[k] = v
	}
	f.Records[path] = append(f.Records[path], record)
	return id
}

// Print implements routeros.Conn.
func (f *FakeConn) Print(path string) ([]routeros.Record, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	entries := f.Records[path]
	out := make([]routeros.Record, len(entries))
	for i, entry := range entries {
		cp := make(routeros.Record, len(entry))
		for k, v := range entry {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

// PrintWhere implements routeros.Conn. Records match when every query
// attribute is equal.
func (f *FakeConn) PrintWhere(path string, queries map[string]string) ([]routeros.Record, error) {
	records, err := f.Print(path)
	if err != nil {
		return nil, err
	}
	matching := make([]routeros.Record, 0, len(records))
	for _, record := range records {
		match := true
		for k, v := range queries {
			if record[k] != v {
				match = false
				break
			}
		}
		if match {
			matching = append(matching, record)
		}
	}
	return matching, nil
}

// Add implements routeros.Conn.
func (f *FakeConn) Add(path string, attrs map[string]string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.Ops = append(f.Ops, "add "+path)
	return f.add(path, attrs), nil
}

// Set implements routeros.Conn.
func (f *FakeConn) Set(path string, id string, attrs map[string]string) error {
	if f.Err != nil {
		return f.Err
	}
	for _, record := range f.Records[path] {
		if record[".id"] == id {
			for k, v := range attrs {
				record[k] = v
			}
			f.Ops = append(f.Ops, fmt.Sprintf("set %s %s", path, id))
			return nil
		}
	}
	return fmt.Errorf("no such item %s at %s", id, path)
}

// Remove implements routeros.Conn.
func (f *FakeConn) Remove(path string, id string) error {
	if f.Err != nil {
		return f.Err
	}
	entries := f.Records[path]
	for i, record := range entries {
		if record[".id"] == id {
			f.Records[path] = append(entries[:i:i], entries[i+1:]...)
			f.Ops = append(f.Ops, fmt.Sprintf("remove %s %s", path, id))
			return nil
		}
	}
	return fmt.Errorf("no such item %s at %s", id, path)
}

// Get returns the record with the given ID.
func (f *FakeConn) Get(path, id string) (routeros.Record, bool) {
	for _, record := range f.Records[path] {
		if record[".id"] == id {
			return record, true
		}
	}
	return nil, false
}
