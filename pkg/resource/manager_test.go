package resource

import (
	"errors"
	"testing"

	"github.com/Munger/mikro-manager/internal/testutil"
)

const testPath = "/ip/dns/static"

func seededManager(t *testing.T) (*Manager, *testutil.FakeConn) {
	t.Helper()
	conn := testutil.NewFakeConn()
	conn.Seed(testPath, map[string]string{"name": "server.lan", "address": "10.0.0.5", "disabled": "false"})
	conn.Seed(testPath, map[string]string{"name": "printer.lan", "address": "10.0.0.6", "disabled": "false"})
	conn.Seed(testPath, map[string]string{"name": "nas.home", "address": "192.168.1.20", "disabled": "true"})
	return NewManager(conn, testPath).WithSearchFields("name", "address"), conn
}

func TestManager_List(t *testing.T) {
	m, _ := seededManager(t)
	entries, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
}

func TestManager_ListWhere(t *testing.T) {
	m, _ := seededManager(t)

	entries, err := m.ListWhere(map[string]string{"disabled": "false"})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListWhere() returned %d entries, want 2", len(entries))
	}

	entries, err = m.ListWhere(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("ListWhere(nil) returned %d entries, want 3", len(entries))
	}
}

func TestManager_Get(t *testing.T) {
	m, _ := seededManager(t)

	entry, found, err := m.Get("*2")
	if err != nil || !found {
		t.Fatalf("Get(*2): found=%v err=%v", found, err)
	}
	if entry["name"] != "printer.lan" {
		t.Errorf("name = %q", entry["name"])
	}

	_, found, err = m.Get("*99")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Get(*99) should not find anything")
	}
}

func TestManager_Find(t *testing.T) {
	m, _ := seededManager(t)

	t.Run("single criterion", func(t *testing.T) {
		entry, found, err := m.Find(map[string]string{"name": "nas.home"})
		if err != nil || !found {
			t.Fatalf("found=%v err=%v", found, err)
		}
		if entry["address"] != "192.168.1.20" {
			t.Errorf("address = %q", entry["address"])
		}
	})

	t.Run("all criteria must match", func(t *testing.T) {
		_, found, err := m.Find(map[string]string{"name": "nas.home", "disabled": "false"})
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Error("mismatched criteria should not find entry")
		}
	})
}

func TestManager_Mutations(t *testing.T) {
	m, conn := seededManager(t)

	t.Run("add", func(t *testing.T) {
		id, err := m.Add(map[string]string{"name": "new.lan", "address": "10.0.0.9"})
		if err != nil {
			t.Fatal(err)
		}
		if id == "" {
			t.Error("Add should return the new ID")
		}
		if rec, ok := conn.Get(testPath, id); !ok || rec["name"] != "new.lan" {
			t.Errorf("record not stored: %v", rec)
		}
	})

	t.Run("update", func(t *testing.T) {
		if err := m.Update("*1", map[string]string{"address": "10.0.0.50"}); err != nil {
			t.Fatal(err)
		}
		if rec, _ := conn.Get(testPath, "*1"); rec["address"] != "10.0.0.50" {
			t.Errorf("address = %q", rec["address"])
		}
	})

	t.Run("enable and disable", func(t *testing.T) {
		if err := m.Disable("*1"); err != nil {
			t.Fatal(err)
		}
		if rec, _ := conn.Get(testPath, "*1"); rec["disabled"] != "true" {
			t.Errorf("disabled = %q, want true", rec["disabled"])
		}
		if err := m.Enable("*1"); err != nil {
			t.Fatal(err)
		}
		if rec, _ := conn.Get(testPath, "*1"); rec["disabled"] != "false" {
			t.Errorf("disabled = %q, want false", rec["disabled"])
		}
	})

	t.Run("set comment", func(t *testing.T) {
		if err := m.SetComment("*1", "main server"); err != nil {
			t.Fatal(err)
		}
		if rec, _ := conn.Get(testPath, "*1"); rec["comment"] != "main server" {
			t.Errorf("comment = %q", rec["comment"])
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := m.Remove("*3"); err != nil {
			t.Fatal(err)
		}
		if _, ok := conn.Get(testPath, "*3"); ok {
			t.Error("record should be gone")
		}
	})
}

func TestManager_Search(t *testing.T) {
	m, _ := seededManager(t)

	tests := []struct {
		name    string
		pattern string
		fields  []string
		want    int
	}{
		{"suffix wildcard on name", "*.lan", nil, 2},
		{"address prefix", "10.0.0.*", nil, 2},
		{"question mark", "printer.la?", nil, 1},
		{"no match", "*.example.com", nil, 0},
		{"explicit field restricts", "10.0.0.*", []string{"name"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := m.Search(tt.pattern, tt.fields)
			if err != nil {
				t.Fatal(err)
			}
			if len(matches) != tt.want {
				t.Errorf("Search(%q) matched %d, want %d", tt.pattern, len(matches), tt.want)
			}
		})
	}
}

func TestManager_SearchAllFieldsFallback(t *testing.T) {
	conn := testutil.NewFakeConn()
	conn.Seed(testPath, map[string]string{"name": "a", "comment": "lab box"})
	m := NewManager(conn, testPath) // no search fields configured

	matches, err := m.Search("lab*", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("fallback search matched %d, want 1", len(matches))
	}
}

func TestManager_ConnError(t *testing.T) {
	conn := testutil.NewFakeConn()
	wantErr := errors.New("connection reset")
	conn.Err = wantErr
	m := NewManager(conn, testPath)

	if _, err := m.List(); !errors.Is(err, wantErr) {
		t.Errorf("List() error = %v, want %v", err, wantErr)
	}
	if _, err := m.Search("*", nil); !errors.Is(err, wantErr) {
		t.Errorf("Search() error = %v, want %v", err, wantErr)
	}
}

func TestManager_Import(t *testing.T) {
	t.Run("adds new entries", func(t *testing.T) {
		m, conn := seededManager(t)
		data := []byte(`[
  {"name": "fresh.lan", "address": "10.0.0.100"},
  {"name": "server.lan", "address": "10.9.9.9"}
]`)
		stats, err := m.Import(data, FormatJSON, false)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Added != 1 || stats.Updated != 0 || stats.Skipped != 1 {
			t.Errorf("stats = %+v", stats)
		}
		// server.lan untouched without overwrite
		if rec, _ := conn.Get(testPath, "*1"); rec["address"] != "10.0.0.5" {
			t.Errorf("existing entry modified: address = %q", rec["address"])
		}
	})

	t.Run("overwrite updates existing", func(t *testing.T) {
		m, conn := seededManager(t)
		data := []byte(`[{"name": "server.lan", "address": "10.9.9.9"}]`)
		stats, err := m.Import(data, FormatJSON, true)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Updated != 1 {
			t.Errorf("stats = %+v", stats)
		}
		if rec, _ := conn.Get(testPath, "*1"); rec["address"] != "10.9.9.9" {
			t.Errorf("address = %q", rec["address"])
		}
	})

	t.Run("overwrite clears emptied fields", func(t *testing.T) {
		m, conn := seededManager(t)
		if err := m.SetComment("*1", "main server"); err != nil {
			t.Fatal(err)
		}
		data := []byte(`[{"name": "server.lan", "address": "10.0.0.5", "comment": ""}]`)
		if _, err := m.Import(data, FormatJSON, true); err != nil {
			t.Fatal(err)
		}
		if rec, _ := conn.Get(testPath, "*1"); rec["comment"] != "" {
			t.Errorf("comment should be cleared, got %q", rec["comment"])
		}
	})

	t.Run("strips ids and skips keyless entries", func(t *testing.T) {
		m, _ := seededManager(t)
		data := []byte(`[
  {".id": "*55", "id": "*55", "name": "withid.lan", "address": "10.0.0.101"},
  {"address": "10.0.0.102"}
]`)
		stats, err := m.Import(data, FormatJSON, false)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Added != 1 || stats.Skipped != 1 {
			t.Errorf("stats = %+v", stats)
		}
		rec, found, err := m.Find(map[string]string{"name": "withid.lan"})
		if err != nil || !found {
			t.Fatalf("imported entry missing: found=%v err=%v", found, err)
		}
		if rec.ID() == "*55" {
			t.Error("imported .id should not be honored")
		}
	})

	t.Run("csv round trip", func(t *testing.T) {
		m, _ := seededManager(t)
		data := []byte("name,address\ncsv.lan,10.0.0.103\n")
		stats, err := m.Import(data, FormatCSV, false)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Added != 1 {
			t.Errorf("stats = %+v", stats)
		}
	})

	t.Run("custom key field", func(t *testing.T) {
		path := "/ip/dhcp-server/lease"
		conn := testutil.NewFakeConn()
		conn.Seed(path, map[string]string{"mac-address": "AA:BB:CC:DD:EE:FF", "address": "10.0.0.10"})
		m := NewManager(conn, path).WithKeyField("mac-address")

		data := []byte(`[{"mac-address": "AA:BB:CC:DD:EE:FF", "address": "10.0.0.11"}]`)
		stats, err := m.Import(data, FormatJSON, true)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Updated != 1 {
			t.Errorf("stats = %+v", stats)
		}
	})
}
