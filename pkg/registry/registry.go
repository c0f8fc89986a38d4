package registry

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/storage"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
)

// Config configures a Registry node.
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string
}

// Registry is the raft-replicated Schema Registry (C3). Every write
// goes through raft.Apply so all nodes commit schemas in the same
// order; reads are served from the local BoltDB copy without going
// through raft, matching the read-your-local-writes tradeoff the
// teacher's manager makes for its own state.
type Registry struct {
	nodeID   string
	bindAddr string
	dataDir  string

	raft  *raft.Raft
	fsm   *schemaFSM
	store storage.SchemaStore
}

// New opens the local store and constructs the FSM but does not start
// raft; call Bootstrap or JoinSelf next.
func New(cfg Config) (*Registry, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, types.Wrap(types.KindPermanentIO, "create data dir", err)
	}

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	return &Registry{
		nodeID:   cfg.NodeID,
		bindAddr: cfg.BindAddr,
		dataDir:  cfg.DataDir,
		fsm:      newSchemaFSM(store),
		store:    store,
	}, nil
}

// raftConfig mirrors the teacher's <10s-failover tuning: heartbeats
// and elections at 500ms instead of raft's 1s WAN-oriented defaults,
// appropriate for the LAN deployment this registry expects.
func (r *Registry) raftConfig() *raft.Config {
	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(r.nodeID)
	config.HeartbeatTimeout = 500 * time.Millisecond
	config.ElectionTimeout = 500 * time.Millisecond
	config.CommitTimeout = 50 * time.Millisecond
	config.LeaderLeaseTimeout = 250 * time.Millisecond
	return config
}

func (r *Registry) newRaft(config *raft.Config) (*raft.Raft, *raft.NetworkTransport, error) {
	addr, err := net.ResolveTCPAddr("tcp", r.bindAddr)
	if err != nil {
		return nil, nil, types.Wrap(types.KindInvalidInput, "resolve bind address", err)
	}

	transport, err := raft.NewTCPTransport(r.bindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, nil, types.Wrap(types.KindPermanentIO, "create raft transport", err)
	}

	snapshotStore, err := raft.NewFileSnapshotStore(r.dataDir, 2, os.Stderr)
	if err != nil {
		return nil, nil, types.Wrap(types.KindPermanentIO, "create snapshot store", err)
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-log.db"))
	if err != nil {
		return nil, nil, types.Wrap(types.KindPermanentIO, "create raft log store", err)
	}

	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(r.dataDir, "raft-stable.db"))
	if err != nil {
		return nil, nil, types.Wrap(types.KindPermanentIO, "create raft stable store", err)
	}

	rn, err := raft.NewRaft(config, r.fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, nil, types.Wrap(types.KindPermanentIO, "create raft node", err)
	}
	return rn, transport, nil
}

// Bootstrap starts a brand-new single-node cluster.
func (r *Registry) Bootstrap() error {
	config := r.raftConfig()
	rn, transport, err := r.newRaft(config)
	if err != nil {
		return err
	}
	r.raft = rn

	future := rn.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{
			{ID: config.LocalID, Address: transport.LocalAddr()},
		},
	})
	if err := future.Error(); err != nil {
		return types.Wrap(types.KindInternal, "bootstrap raft cluster", err)
	}
	return nil
}

// JoinSelf starts raft without bootstrapping a configuration; the
// caller is expected to already have been added as a voter on the
// leader via AddVoter before traffic arrives here.
func (r *Registry) JoinSelf() error {
	rn, _, err := r.newRaft(r.raftConfig())
	if err != nil {
		return err
	}
	r.raft = rn
	return nil
}

// AddVoter adds another registry node to the cluster. Only the
// current leader can do this.
func (r *Registry) AddVoter(nodeID, addr string) error {
	if !r.IsLeader() {
		return types.New(types.KindInvalidInput, fmt.Sprintf("not the leader, current leader is %s", r.LeaderAddr()))
	}
	future := r.raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, 10*time.Second)
	if err := future.Error(); err != nil {
		return types.Wrap(types.KindInternal, "add voter", err)
	}
	return nil
}

// Put registers a new schema through raft consensus. It returns
// AlreadyExists if the id is already registered.
func (r *Registry) Put(schema types.Schema) error {
	if r.raft == nil {
		return types.New(types.KindInternal, "registry: raft not initialized")
	}

	data, err := json.Marshal(putSchemaCommand{Schema: schema})
	if err != nil {
		return types.Wrap(types.KindInternal, "marshal put_schema payload", err)
	}
	cmd, err := json.Marshal(Command{Op: opPutSchema, Data: data})
	if err != nil {
		return types.Wrap(types.KindInternal, "marshal raft command", err)
	}

	timer := metrics.NewTimer()
	future := r.raft.Apply(cmd, 5*time.Second)
	timer.ObserveDuration(metrics.RegistryApplyDuration)

	if err := future.Error(); err != nil {
		return types.Wrap(types.KindInternal, "apply raft command", err)
	}
	if resp := future.Response(); resp != nil {
		if err, ok := resp.(error); ok && err != nil {
			return err
		}
	}
	return nil
}

// Get reads a schema from the local replicated store. Reads do not
// go through raft and may lag a very recent Put on another node.
func (r *Registry) Get(id string) (types.Schema, error) {
	return r.store.GetSchema(id)
}

// List returns every registered schema.
func (r *Registry) List() ([]types.Schema, error) {
	return r.store.ListSchemas()
}

// IsLeader reports whether this node is the current raft leader.
func (r *Registry) IsLeader() bool {
	if r.raft == nil {
		return false
	}
	return r.raft.State() == raft.Leader
}

// LeaderAddr returns the address of the current raft leader, or "" if unknown.
func (r *Registry) LeaderAddr() string {
	if r.raft == nil {
		return ""
	}
	return string(r.raft.Leader())
}

// ReportMetrics updates the registry_is_leader gauge from the current
// raft state. The gauge changes only when this is called, and nothing
// in this module calls it.
func (r *Registry) ReportMetrics() {
	if r.IsLeader() {
		metrics.RegistryIsLeader.Set(1)
	} else {
		metrics.RegistryIsLeader.Set(0)
	}
}

// Shutdown stops raft and closes the local store.
func (r *Registry) Shutdown() error {
	if r.raft != nil {
		if err := r.raft.Shutdown().Error(); err != nil {
			return types.Wrap(types.KindInternal, "shutdown raft", err)
		}
	}
	return r.store.Close()
}
