package engine

import (
	"context"
	"fmt"

	"collectibleAMM/internal/allowlist"
	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

// CreateDynamicAllowlist opens a shared rule set owned by args.Authority.
func (e *Engine) CreateDynamicAllowlist(ctx context.Context, args CreateDynamicAllowlistArgs) (*Receipt, error) {
	key := model.DynamicAllowlistAddress(e.cfg.ProgramID, args.Authority, args.Seed)
	return e.execute(ctx, model.EventDynamicAllowlistSet, key, func(s *session) error {
		if args.Authority.IsZero() {
			return fmt.Errorf("missing authority: %w", ammerr.ErrInvalidOwner)
		}
		if err := allowlist.CheckDynamic(args.Allowlists); err != nil {
			return err
		}
		_, ok, err := e.deps.Store.GetDynamicAllowlist(ctx, key)
		if err != nil {
			return fmt.Errorf("load dynamic allowlist %s: %w", key, err)
		}
		if ok {
			return fmt.Errorf("dynamic allowlist %s exists: %w", key, ammerr.ErrInvalidAccountState)
		}

		s.dynamic = &model.DynamicAllowlist{
			Key:                key,
			Authority:          args.Authority,
			CosignerAnnotation: args.CosignerAnnotation,
			Allowlists:         args.Allowlists,
		}
		s.dynamicDirty = true
		s.pay(args.Authority, key, e.cfg.DynamicRent, "dynamic_allowlist_rent")
		s.event.Pool = key
		s.event.Signer = args.Authority
		return nil
	})
}

// UpdateDynamicAllowlist replaces the rules of a shared rule set. Every
// pool pointing at it picks up the change on its next fill.
func (e *Engine) UpdateDynamicAllowlist(ctx context.Context, args UpdateDynamicAllowlistArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventDynamicAllowlistSet, args.Key, func(s *session) error {
		record, ok, err := e.deps.Store.GetDynamicAllowlist(ctx, args.Key)
		if err != nil {
			return fmt.Errorf("load dynamic allowlist %s: %w", args.Key, err)
		}
		if !ok {
			return fmt.Errorf("dynamic allowlist %s: %w", args.Key, ammerr.ErrDynamicAllowlistNotFound)
		}
		if args.Authority != record.Authority {
			return fmt.Errorf("authority %s: %w", args.Authority, ammerr.ErrInvalidOwner)
		}
		if err := allowlist.CheckDynamic(args.Allowlists); err != nil {
			return err
		}

		record.Allowlists = args.Allowlists
		s.dynamic = &record
		s.dynamicDirty = true
		s.event.Pool = args.Key
		s.event.Signer = args.Authority
		return nil
	})
}

// MigratePool points a pool at a dynamic allowlist holding the same rules.
func (e *Engine) MigratePool(ctx context.Context, args MigratePoolArgs) (*Receipt, error) {
	return e.execute(ctx, model.EventPoolMigrated, args.Pool, func(s *session) error {
		if err := s.loadPool(args.Pool); err != nil {
			return err
		}
		record, ok, err := e.deps.Store.GetDynamicAllowlist(ctx, args.DynamicAllowlist)
		if err != nil {
			return fmt.Errorf("load dynamic allowlist %s: %w", args.DynamicAllowlist, err)
		}
		if !ok {
			return fmt.Errorf("dynamic allowlist %s: %w", args.DynamicAllowlist, ammerr.ErrDynamicAllowlistNotFound)
		}
		if err := allowlist.AssertMigratable(&s.pool, record, args.Authority); err != nil {
			return err
		}

		s.pool.Allowlists = allowlist.PointerTo(record.Key)
		s.event.Signer = args.Authority
		return nil
	})
}
