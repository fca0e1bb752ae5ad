package state_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ardanlabs/mining/foundation/events"
	"github.com/ardanlabs/mining/foundation/mining/clock"
	"github.com/ardanlabs/mining/foundation/mining/genesis"
	"github.com/ardanlabs/mining/foundation/mining/ledger"
	"github.com/ardanlabs/mining/foundation/mining/schedule"
	"github.com/ardanlabs/mining/foundation/mining/state"
	"github.com/ardanlabs/mining/foundation/mining/storage/memory"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/go-cmp/cmp"
	"github.com/holiman/uint256"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	ownerKey   = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	keeperKey  = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	owner      = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	nonPayable = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
)

func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		ChainID: 1,
		Balances: map[string]string{
			owner: "5000000000000000000",
		},
		NonPayable: []string{nonPayable},
		Contracts: []genesis.Contract{
			{Name: "mock", Preset: "mining-contract-mock", Owner: owner, Fund: "300000000000000000000"},
			{Name: "pot", Preset: "proof-of-transaction-mock", Owner: owner, Fund: "2000000000000000000"},
		},
	}
}

type fixture struct {
	clock  *clock.Chain
	store  *memory.Memory
	events *events.Events
	state  *state.State
}

func newFixture(t *testing.T) fixture {
	f := fixture{
		clock:  clock.New(0),
		store:  memory.New(),
		events: events.New(),
	}

	st, err := state.New(state.Config{
		Genesis:   testGenesis(),
		Clock:     f.clock,
		Storage:   f.store,
		Publisher: f.events,
		EvHandler: func(v string, args ...any) { t.Logf(v, args...) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	f.state = st

	return f
}

func signCall(t *testing.T, hexKey string, call state.Call) state.SignedCall {
	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}

	sc, err := call.Sign(privateKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the call: %v", failed, err)
	}

	return sc
}

func keeperAddress(t *testing.T) common.Address {
	privateKey, err := crypto.HexToECDSA(keeperKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}
	return crypto.PubkeyToAddress(privateKey.PublicKey)
}

// =============================================================================

func Test_Execute(t *testing.T) {
	t.Log("Given the need to execute signed calls against the contracts.")
	{
		f := newFixture(t)
		ownerAddr := common.HexToAddress(owner)
		sub := f.events.Acquire("test", "mock")

		t.Log("\tWhen withdrawing before the interval has elapsed.")
		{
			call := state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); !errors.Is(err, schedule.ErrTooEarly) {
				t.Fatalf("\t%s\tShould fail with too early: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with too early.", success)

			if nonce := f.state.QueryAccount(ownerAddr).Nonce; nonce != 0 {
				t.Fatalf("\t%s\tShould not advance the nonce: got %d", failed, nonce)
			}
			t.Logf("\t%s\tShould not advance the nonce.", success)
		}

		t.Log("\tWhen withdrawing once the interval has elapsed.")
		{
			f.clock.MineTo(10)
			writes := f.store.Writes()

			call := state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}
			r, err := f.state.Execute(signCall(t, ownerKey, call))
			if err != nil {
				t.Fatalf("\t%s\tShould be able to withdraw: %v", failed, err)
			}
			if r.Amount != "100000000000000000000" || r.Tick != 10 || r.From != owner {
				t.Fatalf("\t%s\tShould get back the receipt: got %+v", failed, r)
			}
			t.Logf("\t%s\tShould be able to withdraw.", success)

			exp := uint256.MustFromDecimal("105000000000000000000")
			if bal := f.state.QueryAccount(ownerAddr).Balance; !bal.Eq(exp) {
				t.Fatalf("\t%s\tShould credit the receiver: got %s, exp %s", failed, bal.Dec(), exp.Dec())
			}
			t.Logf("\t%s\tShould credit the receiver.", success)

			if nonce := f.state.QueryAccount(ownerAddr).Nonce; nonce != 1 {
				t.Fatalf("\t%s\tShould advance the nonce: got %d", failed, nonce)
			}
			t.Logf("\t%s\tShould advance the nonce.", success)

			if f.store.Writes() <= writes {
				t.Fatalf("\t%s\tShould write a snapshot.", failed)
			}
			t.Logf("\t%s\tShould write a snapshot.", success)

			var msg state.EventMessage
			if err := json.Unmarshal((<-sub).Data, &msg); err != nil {
				t.Fatalf("\t%s\tShould be able to decode the event: %v", failed, err)
			}
			exp2 := state.EventMessage{Contract: "mock", Event: schedule.EventWithdrawal, Tick: 10, To: owner, Amount: "100000000000000000000"}
			if diff := cmp.Diff(exp2, msg); diff != "" {
				t.Fatalf("\t%s\tShould publish the withdrawal event, diff:\n%s", failed, diff)
			}
			t.Logf("\t%s\tShould publish the withdrawal event.", success)
		}

		t.Log("\tWhen a call is replayed.")
		{
			call := state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); !errors.Is(err, ledger.ErrNonce) {
				t.Fatalf("\t%s\tShould fail with a nonce error: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with a nonce error.", success)
		}

		t.Log("\tWhen a call is signed for another chain.")
		{
			call := state.Call{ChainID: 2, Nonce: 2, Contract: "mock", Method: state.MethodWithdraw}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); !errors.Is(err, state.ErrChainID) {
				t.Fatalf("\t%s\tShould fail with a chain id error: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with a chain id error.", success)
		}

		t.Log("\tWhen the signature has been tampered with.")
		{
			call := state.Call{ChainID: 1, Nonce: 2, Contract: "mock", Method: state.MethodWithdraw}
			sc := signCall(t, ownerKey, call)
			sc.Nonce = 3
			if _, err := f.state.Execute(sc); err == nil {
				t.Fatalf("\t%s\tShould not execute the call as the owner.", failed)
			}
			t.Logf("\t%s\tShould not execute the call as the owner.", success)
		}

		t.Log("\tWhen a non owner calls an owner gated contract.")
		{
			f.clock.MineTo(20)

			call := state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}
			if _, err := f.state.Execute(signCall(t, keeperKey, call)); !errors.Is(err, schedule.ErrUnauthorized) {
				t.Fatalf("\t%s\tShould fail with unauthorized: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with unauthorized.", success)
		}

		t.Log("\tWhen calling an unknown contract.")
		{
			call := state.Call{ChainID: 1, Nonce: 2, Contract: "nope", Method: state.MethodWithdraw}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); !errors.Is(err, state.ErrUnknownContract) {
				t.Fatalf("\t%s\tShould fail with unknown contract: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with unknown contract.", success)
		}

		t.Log("\tWhen depositing into a contract.")
		{
			call := state.Call{ChainID: 1, Nonce: 2, Contract: "pot", Method: state.MethodDeposit, Value: "1000000000000000000"}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); err != nil {
				t.Fatalf("\t%s\tShould be able to deposit: %v", failed, err)
			}

			c, err := f.state.QueryContract("pot")
			if err != nil {
				t.Fatalf("\t%s\tShould be able to query the contract: %v", failed, err)
			}
			if exp := uint256.MustFromDecimal("3000000000000000000"); !c.Balance.Eq(exp) {
				t.Fatalf("\t%s\tShould add to the custodied balance: got %s", failed, c.Balance.Dec())
			}
			t.Logf("\t%s\tShould add to the custodied balance.", success)

			exp := uint256.MustFromDecimal("104000000000000000000")
			if bal := f.state.QueryAccount(ownerAddr).Balance; !bal.Eq(exp) {
				t.Fatalf("\t%s\tShould debit the depositor: got %s, exp %s", failed, bal.Dec(), exp.Dec())
			}
			t.Logf("\t%s\tShould debit the depositor.", success)
		}

		t.Log("\tWhen depositing more than the account holds.")
		{
			call := state.Call{ChainID: 1, Nonce: 3, Contract: "pot", Method: state.MethodDeposit, Value: "900000000000000000000"}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); !errors.Is(err, ledger.ErrInsufficientFunds) {
				t.Fatalf("\t%s\tShould fail with insufficient funds: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with insufficient funds.", success)
		}

		t.Log("\tWhen the receiver refuses the value.")
		{
			call := state.Call{ChainID: 1, Nonce: 3, Contract: "mock", Method: state.MethodSetReceiver, Address: nonPayable}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); err != nil {
				t.Fatalf("\t%s\tShould be able to set the receiver: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to set the receiver.", success)

			before, _ := f.state.QueryContract("mock")

			call = state.Call{ChainID: 1, Nonce: 4, Contract: "mock", Method: state.MethodWithdraw}
			if _, err := f.state.Execute(signCall(t, ownerKey, call)); !errors.Is(err, schedule.ErrTransferFailed) {
				t.Fatalf("\t%s\tShould fail with transfer failed: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with transfer failed.", success)

			after, _ := f.state.QueryContract("mock")
			if diff := cmp.Diff(before, after); diff != "" {
				t.Fatalf("\t%s\tShould leave the contract unchanged, diff:\n%s", failed, diff)
			}
			t.Logf("\t%s\tShould leave the contract unchanged.", success)

			if nonce := f.state.QueryAccount(ownerAddr).Nonce; nonce != 3 {
				t.Fatalf("\t%s\tShould not advance the nonce: got %d", failed, nonce)
			}
			t.Logf("\t%s\tShould not advance the nonce.", success)
		}
	}
}

func Test_Keeper(t *testing.T) {
	t.Log("Given the need to trigger withdraws on permissionless contracts.")
	{
		f := newFixture(t)
		keeper := keeperAddress(t)

		t.Log("\tWhen no interval has elapsed.")
		{
			if names := f.state.DueContracts(); len(names) != 0 {
				t.Fatalf("\t%s\tShould have no due contracts: got %v", failed, names)
			}
			t.Logf("\t%s\tShould have no due contracts.", success)
		}

		t.Log("\tWhen the interval has elapsed.")
		{
			f.clock.MineTo(10)

			names := f.state.DueContracts()
			if diff := cmp.Diff([]string{"pot"}, names); diff != "" {
				t.Fatalf("\t%s\tShould only list the permissionless contract, diff:\n%s", failed, diff)
			}
			t.Logf("\t%s\tShould only list the permissionless contract.", success)

			amount, err := f.state.Withdraw(keeper, "pot")
			if err != nil {
				t.Fatalf("\t%s\tShould be able to withdraw as the keeper: %v", failed, err)
			}
			if exp := uint256.MustFromDecimal("1000000000000000000"); !amount.Eq(exp) {
				t.Fatalf("\t%s\tShould release the withdraw amount: got %s", failed, amount.Dec())
			}
			t.Logf("\t%s\tShould be able to withdraw as the keeper.", success)

			if bal := f.state.QueryAccount(keeper).Balance; !bal.IsZero() {
				t.Fatalf("\t%s\tShould pay the receiver, not the keeper: got %s", failed, bal.Dec())
			}
			t.Logf("\t%s\tShould pay the receiver, not the keeper.", success)

			if names := f.state.DueContracts(); len(names) != 0 {
				t.Fatalf("\t%s\tShould have no due contracts after the withdraw: got %v", failed, names)
			}
			t.Logf("\t%s\tShould have no due contracts after the withdraw.", success)
		}
	}
}

func Test_Restore(t *testing.T) {
	t.Log("Given the need to restart a node from its snapshot.")
	{
		f := newFixture(t)
		f.clock.MineTo(10)

		if _, err := f.state.Withdraw(keeperAddress(t), "pot"); err != nil {
			t.Fatalf("\t%s\tShould be able to withdraw: %v", failed, err)
		}

		call := state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodRenounceOwnership}
		if _, err := f.state.Execute(signCall(t, ownerKey, call)); err != nil {
			t.Fatalf("\t%s\tShould be able to renounce: %v", failed, err)
		}

		f.clock.MineTo(15)
		if err := f.state.Shutdown(); err != nil {
			t.Fatalf("\t%s\tShould be able to shutdown: %v", failed, err)
		}

		t.Log("\tWhen constructing a new state from the same storage.")
		{
			clk := clock.New(0)
			st, err := state.New(state.Config{
				Genesis: testGenesis(),
				Clock:   clk,
				Storage: f.store,
			})
			if err != nil {
				t.Fatalf("\t%s\tShould be able to restore the state: %v", failed, err)
			}

			if clk.CurrentTick() != 15 {
				t.Fatalf("\t%s\tShould continue from the saved tick: got %d", failed, clk.CurrentTick())
			}
			t.Logf("\t%s\tShould continue from the saved tick.", success)

			if diff := cmp.Diff(f.state.QueryContracts(), st.QueryContracts()); diff != "" {
				t.Fatalf("\t%s\tShould restore the contracts, diff:\n%s", failed, diff)
			}
			t.Logf("\t%s\tShould restore the contracts.", success)

			if diff := cmp.Diff(f.state.QueryAccounts(), st.QueryAccounts()); diff != "" {
				t.Fatalf("\t%s\tShould restore the accounts, diff:\n%s", failed, diff)
			}
			t.Logf("\t%s\tShould restore the accounts.", success)

			c, _ := st.QueryContract("mock")
			if !c.Renounced {
				t.Fatalf("\t%s\tShould remember the ownership was renounced.", failed)
			}
			t.Logf("\t%s\tShould remember the ownership was renounced.", success)
		}
	}
}
