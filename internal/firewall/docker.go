// Package firewall removes the nftables chains the docker engine programs
// into the host ruleset. apt purge deletes the package but the chains stay
// loaded until reboot; clearing them here leaves the ruleset as if docker
// had never run.
package firewall

import (
	"strings"

	nf "github.com/google/nftables"
	"github.com/google/nftables/expr"

	apperrors "napclean/internal/errors"
)

// dockerTables are the table names docker installs chains into.
var dockerTables = map[string]struct{}{
	"filter": {},
	"nat":    {},
}

// Cleaner tears down leftover docker chains.
type Cleaner struct {
	newConn func() conn
}

// conn is the subset of *nftables.Conn the cleaner uses.
type conn interface {
	ListChains() ([]*nf.Chain, error)
	GetRules(t *nf.Table, c *nf.Chain) ([]*nf.Rule, error)
	DelRule(r *nf.Rule) error
	FlushChain(c *nf.Chain)
	DelChain(c *nf.Chain)
	Flush() error
}

// NewCleaner constructs a Cleaner backed by a netlink connection.
func NewCleaner() *Cleaner {
	return &Cleaner{
		newConn: func() conn { return &nf.Conn{} },
	}
}

// FlushDockerChains deletes every DOCKER* chain from the ip/ip6 filter and
// nat tables, including the jump rules that reference them from base chains.
// A ruleset without docker chains is a no-op.
func (c *Cleaner) FlushDockerChains() error {
	nlConn := c.newConn()

	chains, err := nlConn.ListChains()
	if err != nil {
		return firewallError("firewall.flushDockerChains", "failed to list chains", err, nil)
	}

	var dockerChains []*nf.Chain
	for _, chain := range chains {
		if chain.Table == nil {
			continue
		}
		if _, ok := dockerTables[chain.Table.Name]; !ok {
			continue
		}
		if strings.HasPrefix(chain.Name, "DOCKER") {
			dockerChains = append(dockerChains, chain)
		}
	}

	if len(dockerChains) == 0 {
		return nil
	}

	dockerNames := make(map[string]struct{}, len(dockerChains))
	for _, chain := range dockerChains {
		dockerNames[chain.Name] = struct{}{}
	}

	// Jump rules from base chains (FORWARD, PREROUTING, OUTPUT) must go
	// first, otherwise the chain deletion is rejected as still referenced.
	for _, chain := range chains {
		if chain.Table == nil {
			continue
		}
		if _, ok := dockerTables[chain.Table.Name]; !ok {
			continue
		}

		rules, err := nlConn.GetRules(chain.Table, chain)
		if err != nil {
			return firewallError("firewall.flushDockerChains", "failed to list rules", err, apperrors.Metadata{
				"chain": chain.Name,
			})
		}

		for _, rule := range rules {
			if !jumpsToAny(rule, dockerNames) {
				continue
			}
			if err := nlConn.DelRule(rule); err != nil {
				return firewallError("firewall.flushDockerChains", "failed to delete jump rule", err, apperrors.Metadata{
					"chain": chain.Name,
				})
			}
		}
	}

	for _, chain := range dockerChains {
		nlConn.FlushChain(chain)
		nlConn.DelChain(chain)
	}

	if err := nlConn.Flush(); err != nil {
		return firewallError("firewall.flushDockerChains", "failed to apply chain removal", err, nil)
	}
	return nil
}

func jumpsToAny(rule *nf.Rule, targets map[string]struct{}) bool {
	for _, e := range rule.Exprs {
		verdict, ok := e.(*expr.Verdict)
		if !ok {
			continue
		}
		if _, hit := targets[verdict.Chain]; hit {
			return true
		}
	}
	return false
}

func firewallError(operation, message string, err error, metadata apperrors.Metadata) *apperrors.AppError {
	return apperrors.FirewallError(apperrors.CodeFirewallGeneric, message, err).
		WithModule("firewall").
		WithOperation(operation).
		WithFields(metadata)
}
