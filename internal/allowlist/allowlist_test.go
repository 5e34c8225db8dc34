package allowlist

import (
	"context"
	"errors"
	"testing"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/model"
)

var (
	creatorA   = model.PubkeyFromBytes([]byte("creator-a"))
	creatorB   = model.PubkeyFromBytes([]byte("creator-b"))
	collection = model.PubkeyFromBytes([]byte("collection"))
	group      = model.PubkeyFromBytes([]byte("group"))
	mint       = model.PubkeyFromBytes([]byte("mint"))
)

type staticReader map[model.Pubkey]model.DynamicAllowlist

func (r staticReader) GetDynamicAllowlist(_ context.Context, key model.Pubkey) (model.DynamicAllowlist, bool, error) {
	rec, ok := r[key]
	return rec, ok, nil
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		slots model.Allowlists
		ok    bool
	}{
		{"single creator", model.Allowlists{{Kind: model.AllowlistFirstVerifiedCreator, Value: creatorA}}, true},
		{"creator and mint", model.Allowlists{{Kind: model.AllowlistAnyVerifiedCreator, Value: creatorA}, {}, {Kind: model.AllowlistMint, Value: mint}}, true},
		{"all empty", model.Allowlists{}, false},
		{"empty with value", model.Allowlists{{Kind: model.AllowlistMint, Value: mint}, {Kind: model.AllowlistEmpty, Value: mint}}, false},
		{"rule without value", model.Allowlists{{Kind: model.AllowlistMint}}, false},
		{"unknown kind", model.Allowlists{{Kind: 42, Value: mint}}, false},
		{"two collections", model.Allowlists{{Kind: model.AllowlistVerifiedCollection, Value: collection}, {Kind: model.AllowlistVerifiedCollection, Value: mint}}, false},
		{"two groups", model.Allowlists{{Kind: model.AllowlistToken2022Group, Value: group}, {Kind: model.AllowlistToken2022Group, Value: mint}}, false},
		{"dynamic pointer", PointerTo(mint), true},
		{"dynamic pointer with rules", model.Allowlists{{Kind: model.AllowlistDynamic, Value: mint}, {Kind: model.AllowlistMint, Value: mint}}, false},
		{"dynamic pointer in slot 1", model.Allowlists{{Kind: model.AllowlistMint, Value: mint}, {Kind: model.AllowlistDynamic, Value: mint}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.slots)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ammerr.ErrInvalidAllowLists) {
				t.Fatalf("expected InvalidAllowLists, got %v", err)
			}
		})
	}
}

func TestCheckDynamicRejectsPointer(t *testing.T) {
	if err := CheckDynamic(PointerTo(mint)); !errors.Is(err, ammerr.ErrInvalidAllowLists) {
		t.Fatalf("expected InvalidAllowLists, got %v", err)
	}
}

func TestMatches(t *testing.T) {
	meta := model.AssetMetadata{
		Creators: []model.Creator{
			{Address: creatorA, Verified: false, Share: 50},
			{Address: creatorB, Verified: true, Share: 50},
		},
		Collection: &model.Collection{Key: collection, Verified: true},
		Group:      group,
	}

	tests := []struct {
		name string
		slot model.Slot
		want bool
	}{
		{"mint", model.Slot{Kind: model.AllowlistMint, Value: mint}, true},
		{"other mint", model.Slot{Kind: model.AllowlistMint, Value: creatorA}, false},
		{"first creator unverified", model.Slot{Kind: model.AllowlistFirstVerifiedCreator, Value: creatorA}, false},
		{"first creator is not b", model.Slot{Kind: model.AllowlistFirstVerifiedCreator, Value: creatorB}, false},
		{"any verified creator", model.Slot{Kind: model.AllowlistAnyVerifiedCreator, Value: creatorB}, true},
		{"any creator unverified", model.Slot{Kind: model.AllowlistAnyVerifiedCreator, Value: creatorA}, false},
		{"collection", model.Slot{Kind: model.AllowlistVerifiedCollection, Value: collection}, true},
		{"group", model.Slot{Kind: model.AllowlistToken2022Group, Value: group}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := model.Allowlists{{Kind: model.AllowlistMint, Value: model.PubkeyFromBytes([]byte("nope"))}, tt.slot}
			if got := Matches(slots, mint, meta); got != tt.want {
				t.Fatalf("match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnverifiedCollectionDoesNotMatch(t *testing.T) {
	meta := model.AssetMetadata{Collection: &model.Collection{Key: collection}}
	slots := model.Allowlists{{Kind: model.AllowlistVerifiedCollection, Value: collection}}
	if Matches(slots, mint, meta) {
		t.Fatalf("unverified collection must not match")
	}
}

func TestValidateFollowsDynamicPointer(t *testing.T) {
	key := model.PubkeyFromBytes([]byte("dynamic"))
	reader := staticReader{
		key: {Key: key, Allowlists: model.Allowlists{{Kind: model.AllowlistMint, Value: mint}}},
	}

	if err := Validate(context.Background(), reader, PointerTo(key), mint, model.AssetMetadata{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := model.PubkeyFromBytes([]byte("other"))
	if err := Validate(context.Background(), reader, PointerTo(key), other, model.AssetMetadata{}); !errors.Is(err, ammerr.ErrInvalidAsset) {
		t.Fatalf("expected InvalidAsset, got %v", err)
	}
	missing := model.PubkeyFromBytes([]byte("missing"))
	if err := Validate(context.Background(), reader, PointerTo(missing), mint, model.AssetMetadata{}); !errors.Is(err, ammerr.ErrDynamicAllowlistNotFound) {
		t.Fatalf("expected DynamicAllowlistNotFound, got %v", err)
	}
}

func TestAssertMigratable(t *testing.T) {
	authority := model.PubkeyFromBytes([]byte("authority"))
	rules := model.Allowlists{{Kind: model.AllowlistVerifiedCollection, Value: collection}}
	record := model.DynamicAllowlist{Key: model.PubkeyFromBytes([]byte("dynamic")), Authority: authority, Allowlists: rules}
	pool := &model.Pool{Allowlists: rules}

	if err := AssertMigratable(pool, record, authority); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AssertMigratable(pool, record, creatorA); !errors.Is(err, ammerr.ErrInvalidOwner) {
		t.Fatalf("expected InvalidOwner, got %v", err)
	}

	changed := *pool
	changed.Allowlists[1] = model.Slot{Kind: model.AllowlistMint, Value: mint}
	if err := AssertMigratable(&changed, record, authority); !errors.Is(err, ammerr.ErrInvalidAllowLists) {
		t.Fatalf("expected InvalidAllowLists, got %v", err)
	}

	annotated := *pool
	annotated.CosignerAnnotation[0] = 1
	if err := AssertMigratable(&annotated, record, authority); !errors.Is(err, ammerr.ErrInvalidAccountState) {
		t.Fatalf("expected InvalidAccountState, got %v", err)
	}
}
