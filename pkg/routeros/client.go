// Package routeros wraps the RouterOS binary management API client
// with the small command surface the resource managers need: print,
// add, set, and remove on an API path such as /ip/dns/static.
package routeros

import (
	"crypto/tls"
	"fmt"
	"sort"
	"time"

	ros "github.com/go-routeros/routeros/v3"

	"github.com/Munger/mikro-manager/pkg/config"
	"github.com/Munger/mikro-manager/pkg/util"
)

// DialTimeout bounds the initial API connection.
const DialTimeout = 10 * time.Second

// Record is one API reply sentence as a field map. RouterOS internal
// fields keep their leading dot (".id").
type Record map[string]string

// ID returns the record's RouterOS internal ID.
func (r Record) ID() string {
	return r[".id"]
}

// Bool reads a boolean attribute. RouterOS prints booleans as
// "true"/"false" but accepts "yes"/"no" on writes, so both spellings
// count as true.
func (r Record) Bool(key string) bool {
	return r[key] == "true" || r[key] == "yes"
}

// Conn is the command surface managers operate on. *Client implements
// it against a live router; tests substitute a fake.
type Conn interface {
	Print(path string) ([]Record, error)
	PrintWhere(path string, queries map[string]string) ([]Record, error)
	Add(path string, attrs map[string]string) (string, error)
	Set(path string, id string, attrs map[string]string) error
	Remove(path string, id string) error
}

// Client is a connection to one router's binary API.
type Client struct {
	router *config.Router
	api    *ros.Client
}

// Connect dials the router's API port, using TLS when the router
// config asks for it.
func Connect(router *config.Router) (*Client, error) {
	var (
		api *ros.Client
		err error
	)
	if router.UseSSL {
		tlsConfig := &tls.Config{
			InsecureSkipVerify: router.Insecure, //nolint:gosec
		}
		api, err = ros.DialTLSTimeout(router.APIAddress(), router.Username, router.Password, tlsConfig, DialTimeout)
	} else {
		api, err = ros.DialTimeout(router.APIAddress(), router.Username, router.Password, DialTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to router '%s' (%s): %w", router.Name, router.APIAddress(), err)
	}

	util.WithRouter(router.Name).Debugf("connected to %s", router.APIAddress())
	return &Client{router: router, api: api}, nil
}

// Router returns the router this client is connected to.
func (c *Client) Router() *config.Router {
	return c.router
}

// Close shuts down the API connection.
func (c *Client) Close() {
	if c.api != nil {
		c.api.Close()
		c.api = nil
	}
}

// Print lists all entries at the given API path.
func (c *Client) Print(path string) ([]Record, error) {
	if c.api == nil {
		return nil, util.ErrNotConnected
	}
	reply, err := c.api.Run(path + "/print")
	if err != nil {
		return nil, fmt.Errorf("print %s: %w", path, err)
	}
	return replyRecords(reply), nil
}

// PrintWhere lists entries matching every query attribute, filtered
// on the router with API query words.
func (c *Client) PrintWhere(path string, queries map[string]string) ([]Record, error) {
	if c.api == nil {
		return nil, util.ErrNotConnected
	}
	args := make([]string, 0, len(queries)+1)
	args = append(args, path+"/print")

	keys := make([]string, 0, len(queries))
	for k := range queries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "?"+k+"="+queries[k])
	}

	reply, err := c.api.RunArgs(args)
	if err != nil {
		return nil, fmt.Errorf("print %s: %w", path, err)
	}
	return replyRecords(reply), nil
}

func replyRecords(reply *ros.Reply) []Record {
	records := make([]Record, 0, len(reply.Re))
	for _, re := range reply.Re {
		record := make(Record, len(re.Map))
		for k, v := range re.Map {
			record[k] = v
		}
		records = append(records, record)
	}
	return records
}

// Add creates an entry at the path and returns its new ID.
func (c *Client) Add(path string, attrs map[string]string) (string, error) {
	if c.api == nil {
		return "", util.ErrNotConnected
	}
	reply, err := c.api.RunArgs(commandArgs(path+"/add", "", attrs))
	if err != nil {
		return "", fmt.Errorf("add %s: %w", path, err)
	}
	if reply.Done != nil {
		if ret, ok := reply.Done.Map["ret"]; ok {
			return ret, nil
		}
	}
	return "", nil
}

// Set updates fields of an existing entry.
func (c *Client) Set(path string, id string, attrs map[string]string) error {
	if c.api == nil {
		return util.ErrNotConnected
	}
	if _, err := c.api.RunArgs(commandArgs(path+"/set", id, attrs)); err != nil {
		return fmt.Errorf("set %s %s: %w", path, id, err)
	}
	return nil
}

// Remove deletes an entry by ID.
func (c *Client) Remove(path string, id string) error {
	if c.api == nil {
		return util.ErrNotConnected
	}
	if _, err := c.api.Run(path+"/remove", "=.id="+id); err != nil {
		return fmt.Errorf("remove %s %s: %w", path, id, err)
	}
	return nil
}

// commandArgs builds an API sentence: the command word, the target ID
// when present, then attribute words in sorted key order so commands
// are reproducible.
func commandArgs(command, id string, attrs map[string]string) []string {
	args := make([]string, 0, len(attrs)+2)
	args = append(args, command)
	if id != "" {
		args = append(args, "=.id="+id)
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "="+k+"="+attrs[k])
	}
	return args
}
