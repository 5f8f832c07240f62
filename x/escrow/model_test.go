package escrow

import (
	"testing"

	"github.com/covault/covault"
	"github.com/covault/covault/covtest"
	"github.com/covault/covault/covtest/assert"
	"github.com/covault/covault/store"
)

func addr() covault.Address {
	return covtest.NewCondition().Address()
}

// twoPartyEscrow returns a valid record for participants a and b
// swapping XCO against YCO, vaults not provisioned.
func twoPartyEscrow(t testing.TB, a, b covault.Address) *Escrow {
	t.Helper()
	recAddr, bump, err := covault.Derive([]byte("deal"))
	assert.Nil(t, err)
	return &Escrow{
		Metadata:     &covault.Metadata{Schema: 1},
		Base:         []byte("deal"),
		Address:      recAddr,
		Bump:         uint32(bump),
		Participants: []covault.Address{a, b},
		Obligations: []*Obligation{
			{
				Ticker:      "XCO",
				Amount:      10,
				Source:      a,
				WantTicker:  "YCO",
				Beneficiary: a,
			},
			{
				Ticker:      "YCO",
				Amount:      10,
				Source:      b,
				WantTicker:  "XCO",
				Beneficiary: b,
			},
		},
		Status: StatusCreated,
	}
}

// provision fills the vault table and obligation vault fields the way
// the handler does.
func provision(t testing.TB, esc *Escrow) {
	t.Helper()
	for _, ticker := range esc.Tickers() {
		vaultAddr, bump, err := covault.Derive(esc.Address, []byte(ticker))
		assert.Nil(t, err)
		esc.Vaults = append(esc.Vaults, &VaultEntry{
			Ticker:    ticker,
			Address:   vaultAddr,
			Bump:      uint32(bump),
			Authority: esc.Address,
		})
		for _, o := range esc.Obligations {
			if o.Ticker == ticker {
				o.Vault = vaultAddr
			}
		}
	}
	esc.Status = StatusFunding
}

func TestEscrowValidate(t *testing.T) {
	a, b := addr(), addr()

	esc := twoPartyEscrow(t, a, b)
	assert.Nil(t, esc.Validate())

	provision(t, esc)
	assert.Nil(t, esc.Validate())

	t.Run("too few participants", func(t *testing.T) {
		esc := twoPartyEscrow(t, a, b)
		esc.Participants = esc.Participants[:1]
		esc.Obligations = esc.Obligations[:1]
		if esc.Validate() == nil {
			t.Fatal("single participant accepted")
		}
	})

	t.Run("misaligned obligations", func(t *testing.T) {
		esc := twoPartyEscrow(t, a, b)
		esc.Obligations = esc.Obligations[:1]
		if esc.Validate() == nil {
			t.Fatal("misaligned sequences accepted")
		}
	})

	t.Run("duplicate participant", func(t *testing.T) {
		esc := twoPartyEscrow(t, a, a)
		if esc.Validate() == nil {
			t.Fatal("duplicate participant accepted")
		}
	})

	t.Run("foreign vault authority", func(t *testing.T) {
		esc := twoPartyEscrow(t, a, b)
		provision(t, esc)
		esc.Vaults[0].Authority = addr()
		if esc.Validate() == nil {
			t.Fatal("foreign vault authority accepted")
		}
	})

	t.Run("missing base", func(t *testing.T) {
		esc := twoPartyEscrow(t, a, b)
		esc.Base = nil
		if esc.Validate() == nil {
			t.Fatal("missing base accepted")
		}
	})
}

func TestEscrowRoundTrip(t *testing.T) {
	esc := twoPartyEscrow(t, addr(), addr())
	provision(t, esc)
	esc.Obligations[0].Fulfilled = true

	raw, err := esc.Marshal()
	assert.Nil(t, err)

	var got Escrow
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, esc, &got)
}

func TestEscrowHelpers(t *testing.T) {
	esc := twoPartyEscrow(t, addr(), addr())

	assert.Equal(t, []string{"XCO", "YCO"}, esc.Tickers())
	if esc.FullyProvisioned() {
		t.Fatal("no vault exists yet")
	}
	if esc.Vault("XCO") != nil {
		t.Fatal("unexpected vault")
	}

	provision(t, esc)
	if !esc.FullyProvisioned() {
		t.Fatal("all vaults exist")
	}
	assert.Equal(t, "XCO", esc.Vault("XCO").Ticker)

	if esc.AllFulfilled() {
		t.Fatal("nothing is fulfilled")
	}
	esc.Obligations[0].Fulfilled = true
	esc.Obligations[1].Fulfilled = true
	if !esc.AllFulfilled() {
		t.Fatal("everything is fulfilled")
	}

	if esc.AllReleased() {
		t.Fatal("nothing is released")
	}
}

func TestBucketParticipantIndex(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()

	a, b := addr(), addr()
	esc := twoPartyEscrow(t, a, b)
	assert.Nil(t, bucket.SaveEscrow(db, esc))

	loaded, err := bucket.GetEscrow(db, esc.Address)
	assert.Nil(t, err)
	if loaded == nil {
		t.Fatal("escrow not found")
	}
	assert.Equal(t, esc.Base, loaded.Base)

	for _, p := range []covault.Address{a, b} {
		objs, err := bucket.GetIndexed(db, "participant", p)
		assert.Nil(t, err)
		if len(objs) != 1 {
			t.Fatalf("want one escrow for %s, got %d", p, len(objs))
		}
	}

	objs, err := bucket.GetIndexed(db, "participant", addr())
	assert.Nil(t, err)
	if len(objs) != 0 {
		t.Fatalf("stranger indexed to %d escrows", len(objs))
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "created", StatusCreated.String())
	assert.Equal(t, "funding", StatusFunding.String())
	assert.Equal(t, "settled", StatusSettled.String())
	assert.Equal(t, "invalid", StatusInvalid.String())
}
