package requests

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/nodes"
)

var errCannotReveal = errors.New("node kind cannot reveal other nodes")

// RegisterBuiltins registers all built-in node types by default
// or only the specific ones if types are provided
func RegisterBuiltins(r *Registry, types ...NodeType) {
	if len(types) == 0 {
		types = []NodeType{
			TextNodeType, TriggerNodeType, CounterNodeType,
			BufferNodeType, DirNodeType, LinkNodeType,
		}
	}

	for _, t := range types {
		switch t {
		case TextNodeType:
			r.Register(t, newText)
		case TriggerNodeType:
			r.Register(t, newTrigger)
		case CounterNodeType:
			r.Register(t, newCounter)
		case BufferNodeType:
			r.Register(t, newBuffer)
		case DirNodeType:
			r.Register(t, newDir)
		case LinkNodeType:
			r.Register(t, newLink)
		}
	}
}

func (dto *NodeRequestDTO) options() []nodes.Option {
	var opts []nodes.Option
	if dto.Perm != nil {
		opts = append(opts, nodes.WithPerm(*dto.Perm))
	}
	if dto.OwnerUID != nil || dto.OwnerGID != nil {
		owner := nodes.ProcessOwner()
		if dto.OwnerUID != nil {
			owner.Uid = *dto.OwnerUID
		}
		if dto.OwnerGID != nil {
			owner.Gid = *dto.OwnerGID
		}
		opts = append(opts, nodes.WithOwner(owner))
	}
	return opts
}

func newText(dto *NodeRequestDTO, onFire func()) (riddlefs.Node, error) {
	if onFire != nil {
		return nil, errCannotReveal
	}
	return nodes.NewTextFile(dto.Name, dto.Content, dto.options()...), nil
}

func newTrigger(dto *NodeRequestDTO, onFire func()) (riddlefs.Node, error) {
	return nodes.NewTriggerFile(dto.Name, []byte(dto.Content), onFire, dto.options()...), nil
}

func newCounter(dto *NodeRequestDTO, onFire func()) (riddlefs.Node, error) {
	if dto.Threshold < 1 {
		return nil, fmt.Errorf("threshold must be at least 1, got %d", dto.Threshold)
	}
	return nodes.NewOpenCounter(
		dto.Name, []byte(dto.Content), []byte(dto.Unlocked), dto.Threshold, onFire, dto.options()...,
	), nil
}

func newBuffer(dto *NodeRequestDTO, onFire func()) (riddlefs.Node, error) {
	if onFire != nil {
		return nil, errCannotReveal
	}
	content := []byte(dto.Content)
	if dto.Size != nil {
		if *dto.Size < uint64(len(content)) {
			return nil, fmt.Errorf("size %d is smaller than content", *dto.Size)
		}
		if *dto.Size > nodes.DefaultMaxSize {
			return nil, fmt.Errorf("size %d exceeds the maximum of %d", *dto.Size, nodes.DefaultMaxSize)
		}
		content = append(content, make([]byte, *dto.Size-uint64(len(content)))...)
	}
	return nodes.NewBufferFile(dto.Name, content, dto.options()...), nil
}

func newDir(dto *NodeRequestDTO, onFire func()) (riddlefs.Node, error) {
	if onFire != nil {
		return nil, errCannotReveal
	}
	opts := append(dto.options(), nodes.WithSandbox(dto.Sandbox))
	return nodes.NewDir(dto.Name, opts...), nil
}

func newLink(dto *NodeRequestDTO, onFire func()) (riddlefs.Node, error) {
	if onFire != nil {
		return nil, errCannotReveal
	}
	if dto.Target == "" {
		return nil, errors.New("link target is required")
	}
	return nodes.NewLink(dto.Name, dto.Target, dto.options()...), nil
}
