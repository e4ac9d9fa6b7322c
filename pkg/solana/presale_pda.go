package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Presale 程序常量
var (
	// Presale 程序地址
	PRESALE_PROGRAM_ID = solana.MustPublicKeyFromBase58("5zqdoDng2LnQ7JbiemiRwzTaPnnEU4eMXMfCCF3P4xQQ")
)

// PDA 种子常量
var (
	SEED_PLATFORM           = []byte("platform")
	SEED_PRESALE            = []byte("presale")
	SEED_TOKEN_VAULT        = []byte("token_vault")
	SEED_PUBLIC_FUNDS_VAULT = []byte("public_sol_vault")
	SEED_ECOSYSTEM_VAULT    = []byte("ecosystem_vault")
	SEED_LP_AUTHORITY       = []byte("lp_authority")
	SEED_WHITELIST          = []byte("whitelist")
	SEED_POSITION           = []byte("position")
)

// PDAResult 表示 PDA 计算结果
type PDAResult struct {
	Address solana.PublicKey
	Bump    uint8
}

// GetPlatformPDA 获取平台配置 PDA
func GetPlatformPDA() (PDAResult, error) {
	seeds := [][]byte{SEED_PLATFORM}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find platform PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}

// GetPresalePDA 获取预售 PDA，按 mint 派生
func GetPresalePDA(mint solana.PublicKey) (PDAResult, error) {
	seeds := [][]byte{
		SEED_PRESALE,
		mint[:],
	}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find presale PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}

// GetTokenVaultPDA 获取代币金库 PDA
func GetTokenVaultPDA(presale solana.PublicKey) (PDAResult, error) {
	seeds := [][]byte{
		SEED_TOKEN_VAULT,
		presale[:],
	}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find token vault PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}

// GetPublicFundsVaultPDA 获取公募资金金库 PDA
func GetPublicFundsVaultPDA(presale solana.PublicKey) (PDAResult, error) {
	seeds := [][]byte{
		SEED_PUBLIC_FUNDS_VAULT,
		presale[:],
	}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find public funds vault PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}

// GetEcosystemVaultPDA 获取生态金库 PDA
func GetEcosystemVaultPDA(presale solana.PublicKey) (PDAResult, error) {
	seeds := [][]byte{
		SEED_ECOSYSTEM_VAULT,
		presale[:],
	}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find ecosystem vault PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}

// GetLpAuthorityPDA 获取 LP 权限 PDA
func GetLpAuthorityPDA(presale solana.PublicKey) (PDAResult, error) {
	seeds := [][]byte{
		SEED_LP_AUTHORITY,
		presale[:],
	}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find lp authority PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}

// GetWhitelistPDA 获取白名单条目 PDA
func GetWhitelistPDA(presale solana.PublicKey, user solana.PublicKey) (PDAResult, error) {
	seeds := [][]byte{
		SEED_WHITELIST,
		presale[:],
		user[:],
	}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find whitelist PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}

// GetUserPositionPDA 获取用户头寸 PDA
func GetUserPositionPDA(presale solana.PublicKey, user solana.PublicKey) (PDAResult, error) {
	seeds := [][]byte{
		SEED_POSITION,
		presale[:],
		user[:],
	}

	address, bump, err := solana.FindProgramAddress(seeds, PRESALE_PROGRAM_ID)
	if err != nil {
		return PDAResult{}, fmt.Errorf("failed to find user position PDA: %w", err)
	}

	return PDAResult{Address: address, Bump: bump}, nil
}
