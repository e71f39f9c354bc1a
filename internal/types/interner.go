package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrDuplicateItem is returned when a name is registered twice in the same namespace.
	ErrDuplicateItem = errors.New("duplicate item")
	// ErrInvalidName is returned for empty or built-in item names.
	ErrInvalidName = errors.New("invalid item name")
)

type itemKind uint8

const (
	itemInvalid itemKind = iota
	itemAdt
	itemTrait
)

type itemInfo struct {
	kind        itemKind
	name        string
	genericArgs []GenericArgType
}

// Interner is the append-only registry of ADT and trait declarations.
// Published entries are never mutated, so IDs and arities stay stable for the
// lifetime of any pattern built against them. Safe for concurrent use.
type Interner struct {
	mu     sync.RWMutex
	items  []itemInfo
	adts   map[string]AdtID
	traits map[string]TraitID
}

// NewInterner constructs an empty interner. Slot 0 is reserved as the invalid sentinel.
func NewInterner() *Interner {
	return &Interner{
		items:  []itemInfo{{}},
		adts:   make(map[string]AdtID, 16),
		traits: make(map[string]TraitID, 16),
	}
}

// RegisterAdt publishes a nominal type and returns its id.
func (in *Interner) RegisterAdt(name string, args []GenericArgType) (AdtID, error) {
	name, err := normalizeName(name)
	if err != nil {
		return NoAdtID, err
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, dup := in.adts[name]; dup {
		return NoAdtID, fmt.Errorf("%w: type %q is already declared", ErrDuplicateItem, name)
	}
	id := AdtID(in.appendItem(itemInfo{kind: itemAdt, name: name, genericArgs: cloneArgs(args)}))
	in.adts[name] = id
	return id, nil
}

// RegisterTrait publishes a trait and returns its id.
func (in *Interner) RegisterTrait(name string, args []GenericArgType) (TraitID, error) {
	name, err := normalizeName(name)
	if err != nil {
		return NoTraitID, err
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, dup := in.traits[name]; dup {
		return NoTraitID, fmt.Errorf("%w: trait %q is already declared", ErrDuplicateItem, name)
	}
	id := TraitID(in.appendItem(itemInfo{kind: itemTrait, name: name, genericArgs: cloneArgs(args)}))
	in.traits[name] = id
	return id, nil
}

// MustAdt is RegisterAdt that panics on error. Intended for tests and fixtures.
func (in *Interner) MustAdt(name string, args ...GenericArgType) AdtID {
	id, err := in.RegisterAdt(name, args)
	if err != nil {
		panic(err)
	}
	return id
}

// MustTrait is RegisterTrait that panics on error.
func (in *Interner) MustTrait(name string, args ...GenericArgType) TraitID {
	id, err := in.RegisterTrait(name, args)
	if err != nil {
		panic(err)
	}
	return id
}

// Adt returns the declaration of id. Panics when id is not an ADT of this interner.
func (in *Interner) Adt(id AdtID) AdtData {
	info := in.item(ItemID(id), itemAdt)
	return AdtData{Name: info.name, GenericArgs: cloneArgs(info.genericArgs)}
}

// Trait returns the declaration of id. Panics when id is not a trait of this interner.
func (in *Interner) Trait(id TraitID) TraitData {
	info := in.item(ItemID(id), itemTrait)
	return TraitData{Name: info.name, GenericArgs: cloneArgs(info.genericArgs)}
}

// AdtArity returns only the generic-arg kinds of id without copying the name.
func (in *Interner) AdtArity(id AdtID) []GenericArgType {
	return cloneArgs(in.item(ItemID(id), itemAdt).genericArgs)
}

// LookupAdt finds an ADT by name.
func (in *Interner) LookupAdt(name string) (AdtID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.adts[norm.NFC.String(name)]
	return id, ok
}

// LookupTrait finds a trait by name.
func (in *Interner) LookupTrait(name string) (TraitID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.traits[norm.NFC.String(name)]
	return id, ok
}

// Len returns the number of published items, the sentinel excluded.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.items) - 1
}

// LookupAdtID resolves id without panicking. ok is false for ids this
// interner never issued and for ids that name a trait.
func (in *Interner) LookupAdtID(id AdtID) (AdtData, bool) {
	info, err := in.lookupItem(ItemID(id), itemAdt)
	if err != nil {
		return AdtData{}, false
	}
	return AdtData{Name: info.name, GenericArgs: cloneArgs(info.genericArgs)}, true
}

// LookupTraitID is LookupAdtID for traits.
func (in *Interner) LookupTraitID(id TraitID) (TraitData, bool) {
	info, err := in.lookupItem(ItemID(id), itemTrait)
	if err != nil {
		return TraitData{}, false
	}
	return TraitData{Name: info.name, GenericArgs: cloneArgs(info.genericArgs)}, true
}

func (in *Interner) item(id ItemID, want itemKind) itemInfo {
	info, err := in.lookupItem(id, want)
	if err != nil {
		panic(err)
	}
	return info
}

func (in *Interner) lookupItem(id ItemID, want itemKind) (itemInfo, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoItemID || int(id) >= len(in.items) {
		return itemInfo{}, fmt.Errorf("types: item %d is not registered", id)
	}
	info := in.items[id]
	if info.kind != want {
		return itemInfo{}, fmt.Errorf("types: item %d (%s) is not of the requested kind", id, info.name)
	}
	return info, nil
}

// appendItem must be called with mu held for writing.
func (in *Interner) appendItem(info itemInfo) ItemID {
	idx, err := safecast.Conv[uint32](len(in.items))
	if err != nil {
		panic(fmt.Errorf("len(items) overflow: %w", err))
	}
	in.items = append(in.items, info)
	return ItemID(idx)
}

func normalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if _, builtin := ParseScalar(name); builtin || name == "NonZero" {
		return "", fmt.Errorf("%w: %q is a built-in type name", ErrInvalidName, name)
	}
	return name, nil
}
