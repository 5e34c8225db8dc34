package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"collectibleAMM/internal/ammerr"
	"collectibleAMM/internal/engine/mocks"
	"collectibleAMM/internal/model"
)

func TestStaticSourceFromFile(t *testing.T) {
	mint := model.PubkeyFromBytes([]byte("mint"))
	creator := model.PubkeyFromBytes([]byte("creator"))
	path := filepath.Join(t.TempDir(), "metadata.json")
	body := `[{"mint":"` + mint.String() + `","royalty_bp":500,"creators":[{"address":"` + creator.String() + `","verified":true,"share":100}]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	src, err := LoadStaticSource(path)
	require.NoError(t, err)

	meta, err := src.Resolve(context.Background(), model.Asset{Mint: mint})
	require.NoError(t, err)
	require.Equal(t, uint16(500), meta.RoyaltyBP)
	require.Len(t, meta.Creators, 1)
	require.Equal(t, creator, meta.Creators[0].Address)

	_, err = src.Resolve(context.Background(), model.Asset{Mint: creator})
	require.ErrorIs(t, err, ammerr.ErrInvalidAsset)
}

func TestCachedSourceHitsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockMetadataSource(ctrl)
	asset := model.Asset{Mint: model.PubkeyFromBytes([]byte("mint"))}
	next.EXPECT().Resolve(gomock.Any(), asset).Return(model.AssetMetadata{Mint: asset.Mint, RoyaltyBP: 250}, nil).Times(2)

	cached, err := NewCachedSource(next, 8, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		meta, err := cached.Resolve(context.Background(), asset)
		require.NoError(t, err)
		require.Equal(t, uint16(250), meta.RoyaltyBP)
	}

	cached.Invalidate(asset.Mint)
	_, err = cached.Resolve(context.Background(), asset)
	require.NoError(t, err)
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockMetadataSource(ctrl)
	asset := model.Asset{Mint: model.PubkeyFromBytes([]byte("missing"))}
	next.EXPECT().Resolve(gomock.Any(), asset).Return(model.AssetMetadata{}, ammerr.ErrInvalidAsset).Times(2)

	cached, err := NewCachedSource(next, 8, nil)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := cached.Resolve(context.Background(), asset)
		require.ErrorIs(t, err, ammerr.ErrInvalidAsset)
	}
}
