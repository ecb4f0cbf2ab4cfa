package main

import "testing"

func TestCollectUpdateAttrs(t *testing.T) {
	flags := updateCmd.Flags()
	if err := flags.Set("type", "cname"); err != nil {
		t.Fatal(err)
	}
	if err := flags.Set("cname", "web.lan"); err != nil {
		t.Fatal(err)
	}

	attrs := collectUpdateAttrs(updateCmd)
	if attrs["type"] != "CNAME" {
		t.Errorf("type = %q, want CNAME", attrs["type"])
	}
	if attrs["cname"] != "web.lan" {
		t.Errorf("cname = %q", attrs["cname"])
	}
	if _, ok := attrs["address"]; ok {
		t.Error("unset flags should not produce attrs")
	}
}
