package networks

import (
	"fmt"
	"strings"
)

var ErrChainNotFound = fmt.Errorf("chain not found")

// ChainDescriptor describes one supported EVM network. Descriptors are
// immutable after the registry is built.
type ChainDescriptor struct {
	// ID is the canonical chain id as a 0x-prefixed hex string, e.g. "0x1".
	ID string
	// Name is the human display name, e.g. "Ethereum".
	Name string
	// Aliases are the user-typed names that resolve to this chain,
	// matched case-insensitively.
	Aliases []string
	// RPCEndpoints is the ordered list of public JSON-RPC URLs tried by the
	// direct-node provider. Earlier entries are tried first.
	RPCEndpoints []string
	// WrappedNative is the wrapped native token contract used for spot price
	// lookups. Empty when the chain has no registered wrapped asset.
	WrappedNative string

	NativeSymbol   string
	NativeDecimals int64
}

// Registry is the process-lifetime chain table. It is constructed once and
// injected into the resolver and providers so tests can run with a reduced
// chain set.
type Registry struct {
	byID    map[string]ChainDescriptor
	byAlias map[string]ChainDescriptor
}

func NewRegistry(descriptors []ChainDescriptor) (*Registry, error) {
	result := &Registry{
		byID:    map[string]ChainDescriptor{},
		byAlias: map[string]ChainDescriptor{},
	}
	for _, d := range descriptors {
		id := strings.ToLower(d.ID)
		if _, found := result.byID[id]; found {
			return nil, fmt.Errorf("chain with id '%s' already exists", d.ID)
		}
		result.byID[id] = d
		for _, alias := range d.Aliases {
			alias = strings.ToLower(alias)
			if _, found := result.byAlias[alias]; found {
				return nil, fmt.Errorf("chain alias '%s' already exists", alias)
			}
			result.byAlias[alias] = d
		}
	}
	return result, nil
}

func mustNewRegistry(descriptors []ChainDescriptor) *Registry {
	r, err := NewRegistry(descriptors)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve looks a chain up by alias or canonical id, case-insensitively.
func (r *Registry) Resolve(nameOrID string) (ChainDescriptor, error) {
	key := strings.ToLower(strings.TrimSpace(nameOrID))
	if d, found := r.byAlias[key]; found {
		return d, nil
	}
	if d, found := r.byID[key]; found {
		return d, nil
	}
	return ChainDescriptor{}, fmt.Errorf("chain '%s': %w", nameOrID, ErrChainNotFound)
}

// Normalize maps an alias to its canonical chain id. Unrecognized inputs pass
// through unchanged so chains outside the alias table stay addressable by
// raw id.
func (r *Registry) Normalize(nameOrID string) string {
	if nameOrID == "" {
		return EthereumMainnet.ID
	}
	if strings.EqualFold(nameOrID, "all") {
		return "all"
	}
	if d, err := r.Resolve(nameOrID); err == nil {
		return d.ID
	}
	return nameOrID
}

// DisplayName returns the chain's display name, or the id itself for chains
// not in the registry.
func (r *Registry) DisplayName(chainID string) string {
	if d, err := r.Resolve(chainID); err == nil {
		return d.Name
	}
	return chainID
}

// Endpoints returns the ordered RPC endpoint list for a chain. Unknown chains
// yield an empty list.
func (r *Registry) Endpoints(chainID string) []string {
	if d, err := r.Resolve(chainID); err == nil {
		return d.RPCEndpoints
	}
	return nil
}

// WrappedNative returns the wrapped native token contract for price lookups,
// or "" when the chain has none registered.
func (r *Registry) WrappedNative(chainID string) string {
	if d, err := r.Resolve(chainID); err == nil {
		return d.WrappedNative
	}
	return ""
}

// Names returns every display name and alias known to the registry, for
// suggestion purposes.
func (r *Registry) Names() []string {
	res := []string{}
	for _, d := range r.byID {
		res = append(res, d.Name)
		res = append(res, d.Aliases...)
	}
	return res
}
