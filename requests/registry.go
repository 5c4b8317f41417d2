package requests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// Factory builds a node from its definition. onFire is non-nil when the
// definition lists nodes to reveal; it must be called at most once and
// factories for kinds that never fire should reject it.
type Factory func(dto *NodeRequestDTO, onFire func()) (riddlefs.Node, error)

// Registry maps node types to the factories that build them.
// The zero value is not usable; see [NewRegistry].
type Registry struct {
	factories *xsync.Map[NodeType, Factory]
}

func NewRegistry() *Registry {
	return &Registry{factories: xsync.NewMap[NodeType, Factory]()}
}

// Register ties a factory to a node type and should be called for each type
// during app init. The first registration of a type wins.
func (r *Registry) Register(nodeType NodeType, factory Factory) {
	if _, loaded := r.factories.LoadOrStore(nodeType, factory); loaded {
		logger := util.GetLogger("Requests.Register")
		logger.Warn().Str("type", nodeType).Msg("Factory already registered")
	}
}

// GetFactory returns the factory registered for nodeType
func (r *Registry) GetFactory(nodeType NodeType) (Factory, error) {
	f, ok := r.factories.Load(nodeType)
	if !ok {
		return nil, fmt.Errorf("no factory for %q", nodeType)
	}
	return f, nil
}

// Build turns a definition into a node. Revealed definitions are built
// eagerly so errors surface at load time; they are inserted through m when
// the node fires.
func (r *Registry) Build(dto *NodeRequestDTO, m riddlefs.Mutator) (riddlefs.Node, error) {
	if dto.Name == "" || strings.ContainsRune(dto.Name, '/') {
		return nil, fmt.Errorf("invalid node name %q", dto.Name)
	}
	factory, err := r.GetFactory(dto.Type)
	if err != nil {
		return nil, err
	}

	var onFire func()
	if len(dto.Reveal) > 0 {
		onFire, err = r.reveal(dto, m)
		if err != nil {
			return nil, err
		}
	}

	node, err := factory(dto, onFire)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", dto.Type, dto.Name, err)
	}
	return node, nil
}

func (r *Registry) reveal(dto *NodeRequestDTO, m riddlefs.Mutator) (func(), error) {
	type pending struct {
		path string
		node riddlefs.Node
	}
	revealed := make([]pending, 0, len(dto.Reveal))
	for i := range dto.Reveal {
		def := &dto.Reveal[i]
		node, err := r.Build(def, m)
		if err != nil {
			return nil, fmt.Errorf("%q reveal: %w", dto.Name, err)
		}
		revealed = append(revealed, pending{def.Path, node})
	}

	name := dto.Name
	return func() {
		logger := util.GetLogger("Requests.Reveal")
		logger.Debug().Str("name", name).Int("nodes", len(revealed)).Msg("Revealing nodes")
		for _, p := range revealed {
			m.Insert(p.path, p.node)
		}
	}, nil
}

// Apply builds every definition and schedules its insertion through m.
// Definitions that fail to build are skipped; their errors are joined in the
// returned error. Returns the number of nodes scheduled.
func (r *Registry) Apply(defs []NodeRequestDTO, m riddlefs.Mutator) (int, error) {
	logger := util.GetLogger("Requests.Apply")

	var errs []error
	count := 0
	for i := range defs {
		def := &defs[i]
		node, err := r.Build(def, m)
		if err != nil {
			logger.Debug().Err(err).Str("path", def.Path).Str("name", def.Name).Msg("Failed to build node")
			errs = append(errs, err)
			continue
		}
		m.Insert(def.Path, node)
		count++
	}
	return count, errors.Join(errs...)
}
