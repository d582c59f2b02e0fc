package tests

import (
	"math/big"
	"testing"

	"github.com/ParasHQ/paras-claim-rewards-contract/common"
	"github.com/ParasHQ/paras-claim-rewards-contract/rewards"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	f := newRewardsFixture(t)
	f.rewardsInvoker().Invoke(t, common.Version, "version")
}

func TestDeploy(t *testing.T) {
	e := newExecutor(t)
	token := deployTokenContract(t, e)
	settler := e.NewAccount(t)

	t.Run("incorrect account length", func(t *testing.T) {
		args := []interface{}{util.Uint160{}.BytesBE()[:10], token, settler.ScriptHash()}
		c := compileRewardsContract(t, e)
		e.DeployContractCheckFAULT(t, c, args, "incorrect length of account script hash")
	})

	deployRewardsContract(t, e, e.CommitteeHash, token, settler.ScriptHash())
}

func TestDeposit(t *testing.T) {
	f := newRewardsFixture(t)

	f.deposit(t, 100)
	require.EqualValues(t, 100, f.depositedAmount(t))

	f.deposit(t, 42)
	require.EqualValues(t, 142, f.depositedAmount(t))
	require.EqualValues(t, 142, f.tokenBalance(t, f.rewards))

	t.Run("non-empty message", func(t *testing.T) {
		tok := f.tokenInvoker()
		tok.Invoke(t, stackitem.Null{}, "mint", f.e.CommitteeHash, 10)
		tok.InvokeFail(t, "unexpected deposit message", "transfer",
			f.e.CommitteeHash, f.rewards, 10, []byte("x"))
		require.EqualValues(t, 142, f.depositedAmount(t))
	})

	t.Run("direct invocation", func(t *testing.T) {
		user := f.e.NewAccount(t)
		f.rewardsInvoker().WithSigners(user).InvokeFail(t,
			"only reward token accepted for deposit",
			"onNEP17Payment", user.ScriptHash(), 10, nil)
	})

	t.Run("foreign token", func(t *testing.T) {
		gasHash := f.e.NativeHash(t, nativenames.Gas)
		f.e.CommitteeInvoker(gasHash).InvokeFail(t,
			"only reward token accepted for deposit",
			"transfer", f.e.CommitteeHash, f.rewards, 5, nil)
	})

	t.Run("authorization proof ignored", func(t *testing.T) {
		gasHash := f.e.NativeHash(t, nativenames.Gas)
		f.e.CommitteeInvoker(gasHash).Invoke(t, true,
			"transfer", f.e.CommitteeHash, f.rewards, 5, []byte(rewards.AuthProofDetails))
		require.EqualValues(t, 142, f.depositedAmount(t))
	})
}

func TestDepositOverflow(t *testing.T) {
	f := newRewardsFixture(t)
	tok := f.tokenInvoker()

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	tok.Invoke(t, stackitem.Null{}, "mint", f.e.CommitteeHash, max)
	tok.Invoke(t, true, "transfer", f.e.CommitteeHash, f.rewards, max, nil)

	stack, err := f.rewardsInvoker().TestInvoke(t, "depositedAmount")
	require.NoError(t, err)
	require.Equal(t, max, stack.Pop().BigInt())

	tok.Invoke(t, stackitem.Null{}, "mint", f.e.CommitteeHash, 1)
	tok.InvokeFail(t, "integer overflow", "transfer",
		f.e.CommitteeHash, f.rewards, 1, nil)
}

func TestPushReward(t *testing.T) {
	f := newRewardsFixture(t)
	user := f.e.NewAccount(t)
	acc := user.ScriptHash()

	t.Run("empty escrow", func(t *testing.T) {
		f.rewardsInvoker().InvokeFail(t, "insufficient deposited amount",
			"pushReward", acc, 10, "premature")
	})

	f.deposit(t, 100)

	t.Run("not owner", func(t *testing.T) {
		f.rewardsInvoker().WithSigners(user).InvokeFail(t, "owner witness check failed",
			"pushReward", acc, 10, "not mine to give")
		require.EqualValues(t, 100, f.depositedAmount(t))
	})

	t.Run("non positive amount", func(t *testing.T) {
		f.rewardsInvoker().InvokeFail(t, "non positive amount",
			"pushReward", acc, 0, "nothing")
		f.rewardsInvoker().InvokeFail(t, "non positive amount",
			"pushReward", acc, -5, "negative")
	})

	f.pushReward(t, acc, 10, "first reward")
	f.pushReward(t, acc, 5, "second reward")

	require.EqualValues(t, 15, f.rewardAmount(t, acc))
	require.EqualValues(t, 85, f.depositedAmount(t))

	t.Run("exceeds escrow", func(t *testing.T) {
		f.rewardsInvoker().InvokeFail(t, "insufficient deposited amount",
			"pushReward", acc, 86, "too generous")
		require.EqualValues(t, 15, f.rewardAmount(t, acc))
		require.EqualValues(t, 85, f.depositedAmount(t))
	})

	f.rewardsInvoker().Invoke(t, stackitem.NewArray([]stackitem.Item{
		rewardItem(5, "second reward"),
		rewardItem(10, "first reward"),
	}), "getRewards", acc, 0, 10)
}

func TestPushRewardAuthorizationProof(t *testing.T) {
	e := newExecutor(t)
	token := deployTokenContract(t, e)
	settler := e.NewAccount(t)
	owner := e.NewAccount(t, 0) // not a single GAS fraction
	c := deployRewardsContract(t, e, owner.ScriptHash(), token, settler.ScriptHash())

	user := e.NewAccount(t)
	e.NewInvoker(c, e.Validator, owner).InvokeFail(t,
		"authorization proof transfer failed",
		"pushReward", user.ScriptHash(), 10, "unprovable")
}

func TestClaimReward(t *testing.T) {
	f := newRewardsFixture(t)
	user := f.e.NewAccount(t)
	acc := user.ScriptHash()

	f.deposit(t, 10_000_000)
	f.register(t, acc)
	f.pushReward(t, acc, 10, "airdrop")

	t.Run("non positive amount", func(t *testing.T) {
		f.rewardsInvoker().WithSigners(user).InvokeFail(t, "non positive amount",
			"claimReward", acc, 0)
	})

	t.Run("on another's behalf", func(t *testing.T) {
		attacker := f.e.NewAccount(t)
		f.rewardsInvoker().WithSigners(attacker).InvokeFail(t, "witness check failed",
			"claimReward", acc, 10)
	})

	id := f.claimReward(t, user, 10)

	// balance is untouched until settlement
	require.EqualValues(t, 10, f.rewardAmount(t, acc))
	f.rewardsInvoker().Invoke(t, stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(acc.BytesBE()),
		stackitem.Make(10),
	}), "getClaim", id)

	t.Run("not settlement relay", func(t *testing.T) {
		f.rewardsInvoker().InvokeFail(t,
			"this method must be invoked by the settlement relay",
			"settleClaim", id)
	})

	f.settleClaim(t, true, id)

	require.EqualValues(t, 0, f.rewardAmount(t, acc))
	require.EqualValues(t, 10, f.tokenBalance(t, acc))

	t.Run("settle twice", func(t *testing.T) {
		f.rewardsInvoker().WithSigners(f.settler).InvokeFail(t, "unknown claim",
			"settleClaim", id)
	})

	t.Run("unknown claim", func(t *testing.T) {
		f.rewardsInvoker().InvokeFail(t, "unknown claim",
			"getClaim", util.Uint256{1, 2, 3})
	})
}

func TestClaimIneligibleAccount(t *testing.T) {
	f := newRewardsFixture(t)
	user := f.e.NewAccount(t) // never registered with the token
	acc := user.ScriptHash()

	f.deposit(t, 100)
	f.pushReward(t, acc, 10, "unclaimable")

	id := f.claimReward(t, user, 10)
	f.settleClaim(t, false, id)

	// aborted claim leaves the balance and is consumed
	require.EqualValues(t, 10, f.rewardAmount(t, acc))
	require.EqualValues(t, 0, f.tokenBalance(t, acc))
	f.rewardsInvoker().WithSigners(f.settler).InvokeFail(t, "unknown claim",
		"settleClaim", id)
}

// TestClaimOverdraw claims the same balance twice before any settlement.
// The first settlement wins, the second one aborts against the balance
// already spent.
func TestClaimOverdraw(t *testing.T) {
	f := newRewardsFixture(t)
	user := f.e.NewAccount(t)
	acc := user.ScriptHash()

	f.deposit(t, 100)
	f.register(t, acc)
	f.pushReward(t, acc, 10, "the only reward")

	first := f.claimReward(t, user, 10)
	second := f.claimReward(t, user, 10)
	require.NotEqual(t, first, second)

	f.settleClaim(t, true, first)
	require.EqualValues(t, 0, f.rewardAmount(t, acc))
	require.EqualValues(t, 10, f.tokenBalance(t, acc))

	f.settleClaim(t, false, second)
	require.EqualValues(t, 0, f.rewardAmount(t, acc))
	require.EqualValues(t, 10, f.tokenBalance(t, acc))
}

// TestClaimInterleavedCredit credits the account between the claim request
// and its settlement. Settlement goes against the balance current at the
// settlement moment, not the one observed at the request.
func TestClaimInterleavedCredit(t *testing.T) {
	f := newRewardsFixture(t)
	user := f.e.NewAccount(t)
	acc := user.ScriptHash()

	f.deposit(t, 100)
	f.register(t, acc)

	t.Run("credit lands before settlement", func(t *testing.T) {
		id := f.claimReward(t, user, 10)
		f.pushReward(t, acc, 10, "just in time")
		f.settleClaim(t, true, id)
		require.EqualValues(t, 0, f.rewardAmount(t, acc))
		require.EqualValues(t, 10, f.tokenBalance(t, acc))
	})

	t.Run("extra credit stays", func(t *testing.T) {
		f.pushReward(t, acc, 10, "base")
		id := f.claimReward(t, user, 10)
		f.pushReward(t, acc, 5, "bonus")
		f.settleClaim(t, true, id)
		require.EqualValues(t, 5, f.rewardAmount(t, acc))
		require.EqualValues(t, 20, f.tokenBalance(t, acc))
	})
}

// TestConservation checks that tokens never appear or disappear: escrow
// plus the sum of account balances always equals deposits minus settled
// payouts.
func TestConservation(t *testing.T) {
	f := newRewardsFixture(t)
	alice := f.e.NewAccount(t)
	bob := f.e.NewAccount(t)

	f.deposit(t, 1000)
	f.register(t, alice.ScriptHash())

	f.pushReward(t, alice.ScriptHash(), 300, "salary")
	f.pushReward(t, bob.ScriptHash(), 200, "salary")

	id := f.claimReward(t, alice, 100)
	f.settleClaim(t, true, id)

	deposited := f.depositedAmount(t)
	balances := f.rewardAmount(t, alice.ScriptHash()) + f.rewardAmount(t, bob.ScriptHash())
	settled := f.tokenBalance(t, alice.ScriptHash()) + f.tokenBalance(t, bob.ScriptHash())

	require.EqualValues(t, 500, deposited)
	require.EqualValues(t, 400, balances)
	require.EqualValues(t, 100, settled)
	require.EqualValues(t, 1000, deposited+balances+settled)
}

func TestGetRewards(t *testing.T) {
	f := newRewardsFixture(t)
	user := f.e.NewAccount(t)
	acc := user.ScriptHash()

	require.EqualValues(t, 0, f.rewardAmount(t, acc))
	f.rewardsInvoker().Invoke(t, stackitem.NewArray([]stackitem.Item{}),
		"getRewards", acc, 0, 10)

	f.deposit(t, 100)
	f.pushReward(t, acc, 10, "first")
	f.pushReward(t, acc, 20, "second")
	f.pushReward(t, acc, 30, "third")

	f.rewardsInvoker().Invoke(t, stackitem.NewArray([]stackitem.Item{
		rewardItem(30, "third"),
		rewardItem(20, "second"),
		rewardItem(10, "first"),
	}), "getRewards", acc, 0, 5)

	f.rewardsInvoker().Invoke(t, stackitem.NewArray([]stackitem.Item{
		rewardItem(20, "second"),
		rewardItem(10, "first"),
	}), "getRewards", acc, 0, 2)

	f.rewardsInvoker().Invoke(t, stackitem.NewArray([]stackitem.Item{
		rewardItem(30, "third"),
		rewardItem(20, "second"),
	}), "getRewards", acc, 1, 5)

	f.rewardsInvoker().Invoke(t, stackitem.NewArray([]stackitem.Item{}),
		"getRewards", acc, 5, 5)

	f.rewardsInvoker().InvokeFail(t, "negative index or limit",
		"getRewards", acc, -1, 5)
	f.rewardsInvoker().InvokeFail(t, "negative index or limit",
		"getRewards", acc, 0, -1)
}

func TestPendingClaims(t *testing.T) {
	f := newRewardsFixture(t)
	alice := f.e.NewAccount(t)
	bob := f.e.NewAccount(t)

	f.deposit(t, 100)
	f.register(t, alice.ScriptHash())
	f.pushReward(t, alice.ScriptHash(), 5, "a")
	f.pushReward(t, bob.ScriptHash(), 7, "b")

	require.Empty(t, f.pendingClaims(t))

	idAlice := f.claimReward(t, alice, 5)
	idBob := f.claimReward(t, bob, 7)

	items := f.pendingClaims(t)
	require.Len(t, items, 2)

	ids := make([][]byte, 0, len(items))
	for _, item := range items {
		kv, ok := item.Value().([]stackitem.Item)
		require.True(t, ok)
		require.Len(t, kv, 2)

		id, err := kv[0].TryBytes()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.ElementsMatch(t, [][]byte{idAlice.BytesBE(), idBob.BytesBE()}, ids)

	f.settleClaim(t, true, idAlice)
	require.Len(t, f.pendingClaims(t), 1)
}

func TestSetOwner(t *testing.T) {
	f := newRewardsFixture(t)
	newOwner := f.e.NewAccount(t)
	user := f.e.NewAccount(t)

	f.deposit(t, 100)

	t.Run("not owner", func(t *testing.T) {
		f.rewardsInvoker().WithSigners(user).InvokeFail(t, "owner witness check failed",
			"setOwner", newOwner.ScriptHash())
	})

	f.rewardsInvoker().Invoke(t, stackitem.Null{}, "setOwner", newOwner.ScriptHash())

	// former owner has no say any more
	f.rewardsInvoker().InvokeFail(t, "owner witness check failed",
		"pushReward", user.ScriptHash(), 10, "stale authority")

	f.rewardsInvoker().WithSigners(newOwner).Invoke(t, stackitem.Null{},
		"pushReward", user.ScriptHash(), 10, "fresh authority")
	require.EqualValues(t, 10, f.rewardAmount(t, user.ScriptHash()))
}

func TestUpdate(t *testing.T) {
	f := newRewardsFixture(t)
	user := f.e.NewAccount(t)

	f.rewardsInvoker().WithSigners(user).InvokeFail(t, "owner witness check failed",
		"update", nil, nil, nil)
}
