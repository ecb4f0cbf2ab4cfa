package dns

import (
	"fmt"
	"net"
	"time"

	mdns "github.com/miekg/dns"

	"github.com/Munger/mikro-manager/pkg/util"
)

// CheckStatus classifies the outcome of one resolution check.
type CheckStatus string

const (
	CheckOK       CheckStatus = "ok"
	CheckMismatch CheckStatus = "mismatch"
	CheckMissing  CheckStatus = "missing"
	CheckError    CheckStatus = "error"
)

// CheckResult is the outcome of resolving one static entry against
// the router's resolver.
type CheckResult struct {
	Name     string
	Type     string
	Expected string
	Actual   string
	Status   CheckStatus
}

// queryTimeout bounds each DNS query during a check run.
const queryTimeout = 5 * time.Second

// Check resolves every enabled A and AAAA entry against the given
// resolver (host or host:port) and compares the answers with the
// static table. Other record types are skipped.
func (m *Manager) Check(resolver string) ([]CheckResult, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}

	if _, _, err := net.SplitHostPort(resolver); err != nil {
		resolver = net.JoinHostPort(resolver, "53")
	}

	client := &mdns.Client{Timeout: queryTimeout}

	var results []CheckResult
	for _, entry := range entries {
		if entry.Disabled {
			continue
		}
		if entry.Type != "A" && entry.Type != "AAAA" {
			continue
		}
		results = append(results, checkEntry(client, resolver, entry))
	}
	return results, nil
}

func checkEntry(client *mdns.Client, resolver string, entry Entry) CheckResult {
	result := CheckResult{
		Name:     entry.Name,
		Type:     entry.Type,
		Expected: entry.Address,
	}

	qtype := mdns.TypeA
	if entry.Type == "AAAA" {
		qtype = mdns.TypeAAAA
	}

	msg := new(mdns.Msg)
	msg.SetQuestion(mdns.Fqdn(entry.Name), qtype)

	reply, _, err := client.Exchange(msg, resolver)
	if err != nil {
		result.Status = CheckError
		result.Actual = err.Error()
		return result
	}
	if reply.Rcode != mdns.RcodeSuccess {
		result.Status = CheckMissing
		result.Actual = mdns.RcodeToString[reply.Rcode]
		return result
	}

	addrs := answerAddrs(reply)
	if len(addrs) == 0 {
		result.Status = CheckMissing
		return result
	}
	for _, addr := range addrs {
		if addr == entry.Address {
			result.Status = CheckOK
			result.Actual = addr
			return result
		}
	}
	result.Status = CheckMismatch
	result.Actual = util.Truncate(fmt.Sprintf("%v", addrs), 60)
	return result
}

func answerAddrs(reply *mdns.Msg) []string {
	var addrs []string
	for _, rr := range reply.Answer {
		switch record := rr.(type) {
		case *mdns.A:
			addrs = append(addrs, record.A.String())
		case *mdns.AAAA:
			addrs = append(addrs, record.AAAA.String())
		}
	}
	return addrs
}
