package rewards

import (
	"github.com/ParasHQ/paras-claim-rewards-contract/common"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

type (
	// Account stores the claimable balance of a single account together
	// with the length of its reward history.
	Account struct {
		// Currently claimable amount
		Balance int
		// Number of reward events appended so far
		Count int
	}

	// Reward is a single entry of the append-only reward history.
	Reward struct {
		Amount int
		Memo   string
	}

	// Claim is a claim that awaits settlement. It carries exactly the
	// data the settlement continuation needs.
	Claim struct {
		Claimant interop.Hash160
		Amount   int
	}
)

const (
	ownerKey           = "ownerScriptHash"
	tokenContractKey   = "tokenScriptHash"
	settlerKey         = "settlerScriptHash"
	depositedAmountKey = "depositedAmount"

	accountPrefix = 'a'
	rewardPrefix  = 'r'
	claimPrefix   = 'c'

	// AuthProofAmount is a non-refundable GAS amount attached to
	// pushReward as a proof of deliberate action.
	AuthProofAmount = 1

	// AuthProofDetails is a hardcoded value to distinguish the
	// authorization proof transfer from a deposit in onNEP17Payment.
	AuthProofDetails = "\x79\x6b"
)

func _deploy(data interface{}, isUpdate bool) {
	ctx := storage.GetContext()
	if isUpdate {
		args := data.([]interface{})
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		owner   interop.Hash160
		token   interop.Hash160
		settler interop.Hash160
	})

	if len(args.owner) != interop.Hash160Len ||
		len(args.token) != interop.Hash160Len ||
		len(args.settler) != interop.Hash160Len {
		panic("incorrect length of account script hash")
	}

	if storage.Get(ctx, tokenContractKey) != nil {
		panic("contract already initialized")
	}

	storage.Put(ctx, ownerKey, args.owner)
	storage.Put(ctx, tokenContractKey, args.token)
	storage.Put(ctx, settlerKey, args.settler)

	runtime.Log("claim rewards contract initialized")
}

// Update method updates contract source code and manifest. Can be invoked
// only by the contract owner.
func Update(script []byte, manifest []byte, data interface{}) {
	ctx := storage.GetReadOnlyContext()
	owner := storage.Get(ctx, ownerKey).(interop.Hash160)
	common.CheckOwnerWitness(owner)

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("claim rewards contract updated")
}

// SetOwner transfers contract ownership to another account. Can be invoked
// only by the current owner.
func SetOwner(newOwner interop.Hash160) {
	if len(newOwner) != interop.Hash160Len {
		panic("setOwner: incorrect length of owner script hash")
	}

	ctx := storage.GetContext()
	owner := storage.Get(ctx, ownerKey).(interop.Hash160)
	common.CheckOwnerWitness(owner)

	storage.Put(ctx, ownerKey, newOwner)
	runtime.Log("setOwner: contract owner has been changed")
}

// OnNEP17Payment is a callback for NEP-17 compatible reward token contract.
// It accepts deposits that replenish the escrow counter bounding pushReward.
// The transfer message must be empty, transfers of any other token are
// rejected. GAS transfers marked as pushReward authorization proofs are
// ignored.
func OnNEP17Payment(from interop.Hash160, amount int, data interface{}) {
	caller := runtime.GetCallingScriptHash()

	if data != nil && common.BytesEqual(data.([]byte), []byte(AuthProofDetails)) {
		if common.BytesEqual(caller, interop.Hash160(gas.Hash)) {
			return
		}
	}

	ctx := storage.GetContext()
	token := storage.Get(ctx, tokenContractKey).(interop.Hash160)
	if !common.BytesEqual(caller, token) {
		panic("onNEP17Payment: only reward token accepted for deposit")
	}

	if data != nil && len(data.([]byte)) != 0 {
		panic("onNEP17Payment: unexpected deposit message")
	}

	deposited := getDepositedAmount(ctx)
	storage.Put(ctx, depositedAmountKey, common.CheckedAdd(deposited, amount))

	runtime.Log("onNEP17Payment: deposit has been accepted")
	runtime.Notify("Deposit", from, amount)
}

// PushReward credits the account with the reward amount and appends a new
// entry to its reward history. Can be invoked only by the contract owner
// and requires a non-refundable authorization proof of AuthProofAmount GAS
// attached to the call. The amount is taken from the escrow counter fed by
// deposits, so rewards can never exceed what has been deposited.
//
// Produces RewardPushed notification.
func PushReward(account interop.Hash160, amount int, memo string) {
	if len(account) != interop.Hash160Len {
		panic("pushReward: incorrect length of account script hash")
	}
	if amount <= 0 {
		panic("pushReward: non positive amount")
	}

	ctx := storage.GetContext()
	owner := storage.Get(ctx, ownerKey).(interop.Hash160)
	common.CheckOwnerWitness(owner)

	// proof of deliberate action, not refunded
	transferred := gas.Transfer(owner, runtime.GetExecutingScriptHash(),
		AuthProofAmount, []byte(AuthProofDetails))
	if !transferred {
		panic("pushReward: authorization proof transfer failed")
	}

	deposited := getDepositedAmount(ctx)
	if amount > deposited {
		panic("pushReward: insufficient deposited amount")
	}
	storage.Put(ctx, depositedAmountKey, common.CheckedSub(deposited, amount))

	acc := getAccount(ctx, account)
	acc.Balance = common.CheckedAdd(acc.Balance, amount)
	common.SetSerialized(ctx, rewardKey(account, acc.Count), Reward{
		Amount: amount,
		Memo:   memo,
	})
	acc.Count = acc.Count + 1
	common.SetSerialized(ctx, accountKey(account), acc)

	runtime.Log("pushReward: reward has been pushed")
	runtime.Notify("RewardPushed", account, amount, memo)
}

// ClaimReward starts the claim settlement protocol for the reward of the
// invoking account. Can be invoked only by the claimant, nobody may claim
// on another's behalf. The claimant's balance is not checked and not
// touched here: the claim is recorded under the hash of the carrier
// transaction and an eligibility check against the reward token contract
// is requested. Settlement happens later, in settleClaim, against the
// balance current at that moment.
//
// Produces EligibilityRequest notification.
func ClaimReward(claimant interop.Hash160, amount int) {
	if len(claimant) != interop.Hash160Len {
		panic("claimReward: incorrect length of claimant script hash")
	}
	common.CheckWitness(claimant)

	if amount <= 0 {
		panic("claimReward: non positive amount")
	}

	ctx := storage.GetContext()
	tx := runtime.GetScriptContainer()
	id := tx.Hash

	key := claimKey(id)
	if storage.Get(ctx, key) != nil {
		panic("claimReward: claim id already exists")
	}
	common.SetSerialized(ctx, key, Claim{
		Claimant: claimant,
		Amount:   amount,
	})

	runtime.Log("claimReward: eligibility check has been requested")
	runtime.Notify("EligibilityRequest", claimant, amount, id)
}

// SettleClaim is the continuation of claimReward. Can be invoked only by
// the settlement relay account once the eligibility query result is
// available. The pending claim is consumed, so a claim settles at most
// once. Eligibility is taken from the reward token contract directly and
// the claimant's balance is re-read here: a credit or another claim may
// have executed since the claim was requested, values observed back then
// are not trusted.
//
// An ineligible claimant or an amount exceeding the current balance aborts
// the claim: ClaimAborted notification is produced, false is returned and
// the balance stays untouched. Otherwise the balance is debited first and
// the token transfer is dispatched after, fire-and-forget: a transfer
// declined by the token contract does not revert the debit and requires
// external reconciliation via pendingClaims and token transfer records.
//
// Produces ClaimSettled or ClaimAborted notification.
func SettleClaim(id interop.Hash256) bool {
	ctx := storage.GetContext()
	settler := storage.Get(ctx, settlerKey).(interop.Hash160)
	if !runtime.CheckWitness(settler) {
		panic("settleClaim: this method must be invoked by the settlement relay")
	}

	key := claimKey(id)
	data := storage.Get(ctx, key)
	if data == nil {
		panic("settleClaim: unknown claim")
	}
	c := std.Deserialize(data.([]byte)).(Claim)
	storage.Delete(ctx, key)

	token := storage.Get(ctx, tokenContractKey).(interop.Hash160)
	reg := contract.Call(token, "registrationOf", contract.ReadOnly, c.Claimant)
	if reg == nil {
		runtime.Log("settleClaim: account is not eligible")
		runtime.Notify("ClaimAborted", c.Claimant, c.Amount, "account not eligible")
		return false
	}

	acc := getAccount(ctx, c.Claimant)
	if c.Amount > acc.Balance {
		runtime.Log("settleClaim: amount exceeds reward balance")
		runtime.Notify("ClaimAborted", c.Claimant, c.Amount, "amount exceeds reward balance")
		return false
	}

	acc.Balance = common.CheckedSub(acc.Balance, c.Amount)
	common.SetSerialized(ctx, accountKey(c.Claimant), acc)

	contract.Call(token, "transfer", contract.All,
		runtime.GetExecutingScriptHash(), c.Claimant, c.Amount, nil)

	runtime.Log("settleClaim: claim has been settled")
	runtime.Notify("ClaimSettled", c.Claimant, c.Amount, id)
	return true
}

// GetRewardAmount returns the currently claimable reward amount of the
// account. An account that has never been credited has zero reward.
func GetRewardAmount(account interop.Hash160) int {
	ctx := storage.GetReadOnlyContext()
	return getAccount(ctx, account).Balance
}

// GetRewards returns up to limit entries of the account's reward history
// starting at fromIndex, most recent first. Indices beyond the history
// length yield an empty result.
func GetRewards(account interop.Hash160, fromIndex, limit int) []Reward {
	if fromIndex < 0 || limit < 0 {
		panic("getRewards: negative index or limit")
	}

	ctx := storage.GetReadOnlyContext()
	acc := getAccount(ctx, account)

	end := fromIndex + limit
	if end > acc.Count {
		end = acc.Count
	}

	rewards := []Reward{}
	for i := end - 1; i >= fromIndex; i-- {
		rewards = append(rewards, getReward(ctx, account, i))
	}
	return rewards
}

// GetClaim returns a claim that awaits settlement.
func GetClaim(id interop.Hash256) Claim {
	ctx := storage.GetReadOnlyContext()
	data := storage.Get(ctx, claimKey(id))
	if data == nil {
		panic("getClaim: unknown claim")
	}
	return std.Deserialize(data.([]byte)).(Claim)
}

// PendingClaims returns an iterator over all claims that await settlement.
func PendingClaims() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{claimPrefix},
		storage.RemovePrefix|storage.DeserializeValues)
}

// DepositedAmount returns the amount of deposited reward tokens that has
// not been distributed with pushReward yet.
func DepositedAmount() int {
	ctx := storage.GetReadOnlyContext()
	return getDepositedAmount(ctx)
}

// Version returns version of the contract.
func Version() int {
	return common.Version
}

func accountKey(account interop.Hash160) []byte {
	return append([]byte{accountPrefix}, account...)
}

func rewardKey(account interop.Hash160, index int) []byte {
	return append(append([]byte{rewardPrefix}, account...), convert.ToBytes(index)...)
}

func claimKey(id interop.Hash256) []byte {
	return append([]byte{claimPrefix}, id...)
}

// getAccount returns deserialized ledger account from storage. Accounts
// are created lazily on the first credit, a missing one reads as empty.
func getAccount(ctx storage.Context, account interop.Hash160) Account {
	data := storage.Get(ctx, accountKey(account))
	if data != nil {
		return std.Deserialize(data.([]byte)).(Account)
	}

	return Account{}
}

func getReward(ctx storage.Context, account interop.Hash160, index int) Reward {
	data := storage.Get(ctx, rewardKey(account, index))
	return std.Deserialize(data.([]byte)).(Reward)
}

func getDepositedAmount(ctx storage.Context) int {
	deposited := storage.Get(ctx, depositedAmountKey)
	if deposited != nil {
		return deposited.(int)
	}

	return 0
}
