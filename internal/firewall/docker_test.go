package firewall

import (
	"errors"
	"testing"

	nf "github.com/google/nftables"
	"github.com/google/nftables/expr"
)

type fakeConn struct {
	chains        []*nf.Chain
	rules         map[string][]*nf.Rule
	listErr       error
	deletedRules  int
	deletedChains []string
	flushed       bool
}

func (f *fakeConn) ListChains() ([]*nf.Chain, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.chains, nil
}

func (f *fakeConn) GetRules(t *nf.Table, c *nf.Chain) ([]*nf.Rule, error) {
	return f.rules[c.Name], nil
}

func (f *fakeConn) DelRule(r *nf.Rule) error {
	f.deletedRules++
	return nil
}

func (f *fakeConn) FlushChain(c *nf.Chain) {}

func (f *fakeConn) DelChain(c *nf.Chain) {
	f.deletedChains = append(f.deletedChains, c.Name)
}

func (f *fakeConn) Flush() error {
	f.flushed = true
	return nil
}

func newTestCleaner(fake *fakeConn) *Cleaner {
	return &Cleaner{newConn: func() conn { return fake }}
}

func TestFlushDockerChains_RemovesChainsAndJumps(t *testing.T) {
	filter := &nf.Table{Name: "filter", Family: nf.TableFamilyIPv4}

	dockerChain := &nf.Chain{Name: "DOCKER", Table: filter}
	isolation := &nf.Chain{Name: "DOCKER-ISOLATION-STAGE-1", Table: filter}
	forward := &nf.Chain{Name: "FORWARD", Table: filter}

	jump := &nf.Rule{
		Table: filter,
		Chain: forward,
		Exprs: []expr.Any{
			&expr.Verdict{Kind: expr.VerdictJump, Chain: "DOCKER"},
		},
	}
	unrelated := &nf.Rule{
		Table: filter,
		Chain: forward,
		Exprs: []expr.Any{&expr.Counter{}},
	}

	fake := &fakeConn{
		chains: []*nf.Chain{forward, dockerChain, isolation},
		rules: map[string][]*nf.Rule{
			"FORWARD": {jump, unrelated},
		},
	}

	if err := newTestCleaner(fake).FlushDockerChains(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fake.deletedRules != 1 {
		t.Fatalf("expected only the jump rule deleted, got %d", fake.deletedRules)
	}
	if len(fake.deletedChains) != 2 {
		t.Fatalf("expected both docker chains deleted, got %v", fake.deletedChains)
	}
	if !fake.flushed {
		t.Fatal("expected the batched changes to be applied")
	}
}

func TestFlushDockerChains_NoDockerChains(t *testing.T) {
	filter := &nf.Table{Name: "filter", Family: nf.TableFamilyIPv4}
	fake := &fakeConn{
		chains: []*nf.Chain{{Name: "FORWARD", Table: filter}},
	}

	if err := newTestCleaner(fake).FlushDockerChains(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.flushed {
		t.Fatal("no changes should be applied when no docker chains exist")
	}
}

func TestFlushDockerChains_IgnoresOtherTables(t *testing.T) {
	custom := &nf.Table{Name: "napcat", Family: nf.TableFamilyIPv4}
	fake := &fakeConn{
		chains: []*nf.Chain{{Name: "DOCKER", Table: custom}},
	}

	if err := newTestCleaner(fake).FlushDockerChains(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.deletedChains) != 0 {
		t.Fatalf("chains outside filter/nat must be left alone, got %v", fake.deletedChains)
	}
}

func TestFlushDockerChains_ListFailure(t *testing.T) {
	fake := &fakeConn{listErr: errors.New("netlink unavailable")}

	if err := newTestCleaner(fake).FlushDockerChains(); err == nil {
		t.Fatal("expected error when chain listing fails")
	}
}
