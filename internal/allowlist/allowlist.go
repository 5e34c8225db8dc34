package allowlist

import (
	"context"
	"fmt"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

// DynamicReader loads shared allowlist records.
type DynamicReader interface {
	GetDynamicAllowlist(ctx context.Context, key model.Pubkey) (model.DynamicAllowlist, bool, error)
}

// Check rejects malformed rule sets before a pool is created or updated.
func Check(slots model.Allowlists) error {
	if slots[0].Kind == model.AllowlistDynamic {
		if slots[0].Value.IsZero() {
			return invalid("dynamic pointer without key")
		}
		for i := 1; i < len(slots); i++ {
			if !slots[i].IsEmpty() || !slots[i].Value.IsZero() {
				return invalid("dynamic pointer must be the only rule")
			}
		}
		return nil
	}
	return checkRules(slots)
}

// CheckDynamic validates the rules stored in a dynamic record, which cannot
// point at another record.
func CheckDynamic(slots model.Allowlists) error {
	return checkRules(slots)
}

func checkRules(slots model.Allowlists) error {
	var populated, collections, groups int
	for i, slot := range slots {
		switch slot.Kind {
		case model.AllowlistEmpty:
			if !slot.Value.IsZero() {
				return invalid(fmt.Sprintf("slot %d: empty rule with value", i))
			}
			continue
		case model.AllowlistFirstVerifiedCreator, model.AllowlistMint, model.AllowlistAnyVerifiedCreator:
		case model.AllowlistVerifiedCollection:
			collections++
		case model.AllowlistToken2022Group:
			groups++
		case model.AllowlistDynamic:
			return invalid(fmt.Sprintf("slot %d: dynamic pointer only allowed alone in slot 0", i))
		default:
			return invalid(fmt.Sprintf("slot %d: unknown kind %d", i, slot.Kind))
		}
		if slot.Value.IsZero() {
			return invalid(fmt.Sprintf("slot %d: %s rule without value", i, slot.Kind))
		}
		populated++
	}
	if populated == 0 {
		return invalid("no rules")
	}
	if collections > 1 {
		return invalid("more than one verified collection rule")
	}
	if groups > 1 {
		return invalid("more than one token group rule")
	}
	return nil
}

// Matches reports whether the asset satisfies at least one populated rule.
func Matches(slots model.Allowlists, mint model.Pubkey, meta model.AssetMetadata) bool {
	for _, slot := range slots {
		if slot.IsEmpty() {
			continue
		}
		if matchSlot(slot, mint, meta) {
			return true
		}
	}
	return false
}

func matchSlot(slot model.Slot, mint model.Pubkey, meta model.AssetMetadata) bool {
	switch slot.Kind {
	case model.AllowlistMint:
		return mint == slot.Value
	case model.AllowlistFirstVerifiedCreator:
		return len(meta.Creators) > 0 && meta.Creators[0].Verified && meta.Creators[0].Address == slot.Value
	case model.AllowlistAnyVerifiedCreator:
		for _, c := range meta.Creators {
			if c.Verified && c.Address == slot.Value {
				return true
			}
		}
		return false
	case model.AllowlistVerifiedCollection:
		return meta.Collection != nil && meta.Collection.Verified && meta.Collection.Key == slot.Value
	case model.AllowlistToken2022Group:
		return !meta.Group.IsZero() && meta.Group == slot.Value
	default:
		return false
	}
}

// Resolve follows a dynamic pointer in slot 0 and returns the effective rules.
func Resolve(ctx context.Context, reader DynamicReader, slots model.Allowlists) (model.Allowlists, error) {
	if slots[0].Kind != model.AllowlistDynamic {
		return slots, nil
	}
	if reader == nil {
		return model.Allowlists{}, invalid("no dynamic allowlist reader")
	}
	record, ok, err := reader.GetDynamicAllowlist(ctx, slots[0].Value)
	if err != nil {
		return model.Allowlists{}, fmt.Errorf("load dynamic allowlist %s: %w", slots[0].Value, err)
	}
	if !ok {
		return model.Allowlists{}, fmt.Errorf("dynamic allowlist %s: %w", slots[0].Value, ammerr.ErrDynamicAllowlistNotFound)
	}
	return record.Allowlists, nil
}

// Validate resolves the rules and fails unless the asset matches them.
func Validate(ctx context.Context, reader DynamicReader, slots model.Allowlists, mint model.Pubkey, meta model.AssetMetadata) error {
	rules, err := Resolve(ctx, reader, slots)
	if err != nil {
		return err
	}
	if !Matches(rules, mint, meta) {
		return fmt.Errorf("asset %s: %w", mint, ammerr.ErrInvalidAsset)
	}
	return nil
}

// PointerTo returns a rule set that defers to the dynamic record at key.
func PointerTo(key model.Pubkey) model.Allowlists {
	var slots model.Allowlists
	slots[0] = model.Slot{Kind: model.AllowlistDynamic, Value: key}
	return slots
}

// AssertMigratable checks that pool can be switched to point at record
// without changing which assets it accepts.
func AssertMigratable(pool *model.Pool, record model.DynamicAllowlist, signer model.Pubkey) error {
	if signer != record.Authority {
		return fmt.Errorf("signer is not the dynamic allowlist authority: %w", ammerr.ErrInvalidOwner)
	}
	if pool.Allowlists[0].Kind == model.AllowlistDynamic {
		return fmt.Errorf("pool already points at %s: %w", pool.Allowlists[0].Value, ammerr.ErrInvalidAllowLists)
	}
	if pool.Allowlists != record.Allowlists {
		return invalid("pool rules differ from the dynamic allowlist")
	}
	if pool.CosignerAnnotation != record.CosignerAnnotation {
		return fmt.Errorf("cosigner annotation differs: %w", ammerr.ErrInvalidAccountState)
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%s: %w", reason, ammerr.ErrInvalidAllowLists)
}
