/*
Rewards contract is a contract deployed in a Neo N3 chain alongside a
NEP-17 reward token contract.

Rewards contract tracks reward entitlements owed to accounts and settles
withdrawal requests by directing the token contract to move the funds. The
contract itself holds no token balances besides the escrow of deposited
rewards: the token contract is the source of truth for actual token
ownership.

The contract owner funds the escrow by transferring reward tokens to the
contract with an empty transfer message, then distributes them with
pushReward. Distribution is bounded by the escrow counter, so the sum of
all account balances never exceeds what has been deposited.

An account holder withdraws with claimReward. Settlement is asynchronous
and takes two transactions: claimReward records the claim and requests an
eligibility check, settleClaim (invoked by the settlement relay account
once the check result is available) re-validates the claim against the
account's balance current at that moment and, if it still holds, debits
the ledger and dispatches the token transfer. Other operations against the
same account may execute between the two transactions, which is why the
balance is re-read instead of being captured at request time. The transfer
is dispatched after the debit and is not awaited: a transfer declined by
the token contract leaves the debit in place and requires external
reconciliation.

# Contract notifications

Deposit notification. Produced when reward tokens are transferred to the
contract and the escrow counter has been increased.

	Deposit:
	  - name: from
	    type: Hash160
	  - name: amount
	    type: Integer

RewardPushed notification. Produced when the owner credits an account.

	RewardPushed:
	  - name: account
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: memo
	    type: String

EligibilityRequest notification. Produced when a claim has been recorded
and awaits settlement. The settlement relay catches the notification and
invokes settleClaim with the same id once the eligibility query against
the reward token contract resolves.

	EligibilityRequest:
	  - name: claimant
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: id
	    type: Hash256

ClaimSettled notification. Produced when a claim has been settled: the
ledger has been debited and the token transfer has been dispatched.

	ClaimSettled:
	  - name: claimant
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: id
	    type: Hash256

ClaimAborted notification. Produced when settlement found the claimant not
registered with the reward token or the claimed amount exceeding the
current balance. The balance stays untouched.

	ClaimAborted:
	  - name: claimant
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: reason
	    type: String
*/
package rewards
