package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/ParasHQ/paras-claim-rewards-contract/rpc/rewards"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// number of reward history entries requested per RPC call
const historyPageSize = 100

// maximum number of pending claims requested from the RPC server at once
const maxPendingClaims = 1024

func main() {
	neoRPCEndpoint := flag.String("rpc", "", "Network address of the Neo RPC server")
	contractHash := flag.String("contract", "", "Hash or address of the rewards contract")
	account := flag.String("account", "", "Account to print the reward state of (optional)")

	flag.Parse()

	switch {
	case *neoRPCEndpoint == "":
		log.Fatal("missing Neo RPC endpoint")
	case *contractHash == "":
		log.Fatal("missing rewards contract hash")
	}

	rewardsHash, err := parseUint160(*contractHash)
	if err != nil {
		log.Fatal(fmt.Errorf("parse rewards contract hash: %w", err))
	}

	err = _dump(*neoRPCEndpoint, rewardsHash, *account)
	if err != nil {
		log.Fatal(err)
	}
}

func _dump(neoBlockchainRPCEndpoint string, rewardsHash util.Uint160, account string) error {
	b, err := newRemoteBlockChain(neoBlockchainRPCEndpoint)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	reader := rewards.NewReader(b.invoker, rewardsHash)

	version, err := reader.Version()
	if err != nil {
		return fmt.Errorf("get contract version: %w", err)
	}

	deposited, err := reader.DepositedAmount()
	if err != nil {
		return fmt.Errorf("get deposited amount: %w", err)
	}

	fmt.Printf("Rewards contract %s (version %s, block #%d)\n",
		rewardsHash.StringLE(), version, b.currentBlock)
	fmt.Printf("Deposited amount: %s\n", deposited)

	err = dumpPendingClaims(reader)
	if err != nil {
		return err
	}

	if account == "" {
		return nil
	}

	acc, err := parseUint160(account)
	if err != nil {
		return fmt.Errorf("parse account: %w", err)
	}

	return dumpAccount(reader, acc)
}

func dumpPendingClaims(reader *rewards.ContractReader) error {
	items, err := reader.PendingClaimsExpanded(maxPendingClaims)
	if err != nil {
		return fmt.Errorf("get pending claims: %w", err)
	}

	fmt.Printf("Pending claims: %d\n", len(items))

	for i := range items {
		pair, ok := items[i].Value().([]stackitem.Item)
		if !ok || len(pair) != 2 {
			return fmt.Errorf("unexpected format of pending claim #%d", i)
		}

		rawID, err := pair[0].TryBytes()
		if err != nil {
			return fmt.Errorf("id of pending claim #%d: %w", i, err)
		}

		id, err := util.Uint256DecodeBytesBE(rawID)
		if err != nil {
			return fmt.Errorf("id of pending claim #%d: %w", i, err)
		}

		var c rewards.RewardsClaim

		err = c.FromStackItem(pair[1])
		if err != nil {
			return fmt.Errorf("pending claim #%d: %w", i, err)
		}

		fmt.Printf("  %s: %s to %s\n", id.StringLE(), c.Amount, address.Uint160ToString(c.Claimant))
	}

	return nil
}

// dumpAccount prints the claimable balance of the account and its full
// reward history, page by page.
func dumpAccount(reader *rewards.ContractReader, acc util.Uint160) error {
	balance, err := reader.GetRewardAmount(acc)
	if err != nil {
		return fmt.Errorf("get reward amount: %w", err)
	}

	fmt.Printf("Account %s reward balance: %s\n", address.Uint160ToString(acc), balance)

	for from := int64(0); ; from += historyPageSize {
		page, err := reader.GetRewards(acc, big.NewInt(from), big.NewInt(historyPageSize))
		if err != nil {
			return fmt.Errorf("get reward history page starting at %d: %w", from, err)
		}

		if len(page) == 0 {
			return nil
		}

		for _, r := range page {
			fmt.Printf("  %s\t%s\n", r.Amount, r.Memo)
		}
	}
}

// parseUint160 accepts both Neo addresses and little-endian script hashes
// with an optional 0x prefix.
func parseUint160(s string) (util.Uint160, error) {
	h, err := address.StringToUint160(s)
	if err == nil {
		return h, nil
	}

	return util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
}
