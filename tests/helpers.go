package tests

import (
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

const (
	rewardsPath = "../rewards"
	tokenPath   = "../internal/testcontracts/token"
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func deployTokenContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	e.DeployContract(t, c, nil)
	return c.Hash
}

func compileRewardsContract(t *testing.T, e *neotest.Executor) *neotest.Contract {
	return neotest.CompileFile(t, e.CommitteeHash, rewardsPath, path.Join(rewardsPath, "config.yml"))
}

func deployRewardsContract(t *testing.T, e *neotest.Executor, owner, token, settler util.Uint160) util.Uint160 {
	args := make([]interface{}, 3)
	args[0] = owner
	args[1] = token
	args[2] = settler

	c := compileRewardsContract(t, e)
	e.DeployContract(t, c, args)
	return c.Hash
}

// rewardsFixture is a deployed rewards contract together with its reward
// token stand-in and the settlement relay account. The contract owner is
// the committee account.
type rewardsFixture struct {
	e       *neotest.Executor
	rewards util.Uint160
	token   util.Uint160
	settler neotest.Signer
}

func newRewardsFixture(t *testing.T) *rewardsFixture {
	e := newExecutor(t)
	token := deployTokenContract(t, e)
	settler := e.NewAccount(t)
	rewards := deployRewardsContract(t, e, e.CommitteeHash, token, settler.ScriptHash())
	return &rewardsFixture{
		e:       e,
		rewards: rewards,
		token:   token,
		settler: settler,
	}
}

func (f *rewardsFixture) rewardsInvoker() *neotest.ContractInvoker {
	return f.e.CommitteeInvoker(f.rewards)
}

func (f *rewardsFixture) tokenInvoker() *neotest.ContractInvoker {
	return f.e.CommitteeInvoker(f.token)
}

// deposit mints tokens to the committee account and transfers them to the
// rewards contract with an empty message.
func (f *rewardsFixture) deposit(t *testing.T, amount int64) {
	tok := f.tokenInvoker()
	tok.Invoke(t, stackitem.Null{}, "mint", f.e.CommitteeHash, amount)
	tok.Invoke(t, true, "transfer", f.e.CommitteeHash, f.rewards, amount, nil)
}

func (f *rewardsFixture) register(t *testing.T, account util.Uint160) {
	f.tokenInvoker().Invoke(t, stackitem.Null{}, "register", account)
}

func (f *rewardsFixture) pushReward(t *testing.T, account util.Uint160, amount int64, memo string) {
	f.rewardsInvoker().Invoke(t, stackitem.Null{}, "pushReward", account, amount, memo)
}

// claimReward requests a claim on behalf of the claimant and returns the
// claim id (the hash of the carrier transaction).
func (f *rewardsFixture) claimReward(t *testing.T, claimant neotest.Signer, amount int64) util.Uint256 {
	c := f.rewardsInvoker().WithSigners(claimant)
	return c.Invoke(t, stackitem.Null{}, "claimReward", claimant.ScriptHash(), amount)
}

func (f *rewardsFixture) settleClaim(t *testing.T, settled bool, id util.Uint256) {
	f.rewardsInvoker().WithSigners(f.settler).Invoke(t, settled, "settleClaim", id)
}

func (f *rewardsFixture) rewardAmount(t *testing.T, account util.Uint160) int64 {
	stack, err := f.rewardsInvoker().TestInvoke(t, "getRewardAmount", account)
	require.NoError(t, err)
	return stack.Pop().BigInt().Int64()
}

func (f *rewardsFixture) depositedAmount(t *testing.T) int64 {
	stack, err := f.rewardsInvoker().TestInvoke(t, "depositedAmount")
	require.NoError(t, err)
	return stack.Pop().BigInt().Int64()
}

func (f *rewardsFixture) tokenBalance(t *testing.T, account util.Uint160) int64 {
	stack, err := f.tokenInvoker().TestInvoke(t, "balanceOf", account)
	require.NoError(t, err)
	return stack.Pop().BigInt().Int64()
}

func (f *rewardsFixture) pendingClaims(t *testing.T) []stackitem.Item {
	stack, err := f.rewardsInvoker().TestInvoke(t, "pendingClaims")
	require.NoError(t, err)
	iter, ok := stack.Pop().Value().(*storage.Iterator)
	require.True(t, ok)
	return iteratorToArray(iter)
}

func iteratorToArray(iter *storage.Iterator) []stackitem.Item {
	stackItems := make([]stackitem.Item, 0)
	for iter.Next() {
		stackItems = append(stackItems, iter.Value())
	}
	return stackItems
}

// rewardItem is the stack representation of a single reward history entry.
func rewardItem(amount int64, memo string) stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.Make(amount),
		stackitem.Make(memo),
	})
}
