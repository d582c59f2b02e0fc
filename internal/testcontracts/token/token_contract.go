package token

import (
	"github.com/ParasHQ/paras-claim-rewards-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// NEP-17 token with a registration surface, deployed by tests in place of
// the reward token contract.

const (
	totalSupplyKey = "totalSupply"

	balancePrefix  = 'b'
	registerPrefix = 'g'
)

func Symbol() string {
	return "PARAS"
}

func Decimals() int {
	return 8
}

func TotalSupply() int {
	ctx := storage.GetReadOnlyContext()
	supply := storage.Get(ctx, totalSupplyKey)
	if supply != nil {
		return supply.(int)
	}
	return 0
}

func BalanceOf(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return balanceOf(ctx, account)
}

// Transfer moves tokens between accounts and lets contract recipients know
// via onNEP17Payment. Can be invoked by the account owner or by a contract
// transferring its own funds.
func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if len(from) != interop.Hash160Len || len(to) != interop.Hash160Len {
		panic("transfer: invalid account")
	}
	if amount < 0 {
		panic("transfer: negative amount")
	}
	if !canSpend(from) {
		return false
	}

	ctx := storage.GetContext()
	fromBalance := balanceOf(ctx, from)
	if fromBalance < amount {
		return false
	}

	storage.Put(ctx, balanceKey(from), fromBalance-amount)
	storage.Put(ctx, balanceKey(to), balanceOf(ctx, to)+amount)
	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
	return true
}

// Mint creates tokens out of thin air, tests fund accounts with it.
func Mint(to interop.Hash160, amount int) {
	if amount < 0 {
		panic("mint: negative amount")
	}
	ctx := storage.GetContext()
	storage.Put(ctx, balanceKey(to), balanceOf(ctx, to)+amount)
	storage.Put(ctx, totalSupplyKey, TotalSupply()+amount)
	runtime.Notify("Transfer", interop.Hash160(nil), to, amount)
}

// Register marks the account as able to receive the token.
func Register(account interop.Hash160) {
	if len(account) != interop.Hash160Len {
		panic("register: invalid account")
	}
	ctx := storage.GetContext()
	storage.Put(ctx, registerKey(account), account)
}

// RegistrationOf returns registration info of the account or nil if it is
// not registered.
func RegistrationOf(account interop.Hash160) any {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, registerKey(account))
}

// canSpend checks if the sender is either the account owner or a contract
// moving its own funds.
func canSpend(from interop.Hash160) bool {
	if runtime.CheckWitness(from) {
		return true
	}
	return common.BytesEqual(runtime.GetCallingScriptHash(), from)
}

func balanceOf(ctx storage.Context, account interop.Hash160) int {
	balance := storage.Get(ctx, balanceKey(account))
	if balance != nil {
		return balance.(int)
	}
	return 0
}

func balanceKey(account interop.Hash160) []byte {
	return append([]byte{balancePrefix}, account...)
}

func registerKey(account interop.Hash160) []byte {
	return append([]byte{registerPrefix}, account...)
}
