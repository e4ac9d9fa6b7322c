package solana

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresalePDADeterministic(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	first, err := GetPresalePDA(mint)
	require.NoError(t, err)
	second, err := GetPresalePDA(mint)
	require.NoError(t, err)

	// 同一 mint 的派生结果必须一致
	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.Bump, second.Bump)
	assert.False(t, first.Address.IsZero())
}

func TestVaultPDAsDistinct(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	presale, err := GetPresalePDA(mint)
	require.NoError(t, err)

	tokenVault, err := GetTokenVaultPDA(presale.Address)
	require.NoError(t, err)
	fundsVault, err := GetPublicFundsVaultPDA(presale.Address)
	require.NoError(t, err)
	ecosystemVault, err := GetEcosystemVaultPDA(presale.Address)
	require.NoError(t, err)
	lpAuthority, err := GetLpAuthorityPDA(presale.Address)
	require.NoError(t, err)

	// 不同种子派生出的地址必须互不相同
	addresses := map[string]bool{
		presale.Address.String():        true,
		tokenVault.Address.String():     true,
		fundsVault.Address.String():     true,
		ecosystemVault.Address.String(): true,
		lpAuthority.Address.String():    true,
	}
	assert.Len(t, addresses, 5)
}

func TestPerUserPDAsKeyedByUser(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	userA := solana.MustPublicKeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	userB := solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")

	presale, err := GetPresalePDA(mint)
	require.NoError(t, err)

	wlA, err := GetWhitelistPDA(presale.Address, userA)
	require.NoError(t, err)
	wlB, err := GetWhitelistPDA(presale.Address, userB)
	require.NoError(t, err)
	posA, err := GetUserPositionPDA(presale.Address, userA)
	require.NoError(t, err)

	assert.NotEqual(t, wlA.Address, wlB.Address)
	assert.NotEqual(t, wlA.Address, posA.Address)
}
