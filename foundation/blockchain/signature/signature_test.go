package signature_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	type table struct {
		name string
		data []byte
		hash string
	}

	tt := []table{
		{name: "empty", data: nil, hash: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{name: "abc", data: []byte("abc"), hash: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	t.Log("Given the need to hash data.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen hashing %q.", testID, tst.name)
				{
					h := signature.Hash(tst.data).Hex()
					if h != tst.hash {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, h)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.hash)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right hash.", success, testID)

					if h2 := signature.Hash(tst.data).Hex(); h2 != h {
						t.Fatalf("\t%s\tTest %d:\tShould get back the same hash twice.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the same hash twice.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Signing(t *testing.T) {
	data := []byte("Bill")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, pub, err := signature.Sign(data, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if len(sig) != crypto.SignatureLength {
		t.Fatalf("Should get back a %d byte signature, got %d", crypto.SignatureLength, len(sig))
	}

	if err := signature.Verify(data, sig, pub); err != nil {
		t.Fatalf("Should be able to verify the signature: %s", err)
	}

	addr, err := signature.Address(pub)
	if err != nil {
		t.Fatalf("Should be able to generate an address: %s", err)
	}

	if from != addr {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}
}

func Test_VerifyFailures(t *testing.T) {
	data := []byte("Bill")

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	sig, pub, err := signature.Sign(data, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a second key: %s", err)
	}
	otherPub := crypto.FromECDSAPub(&other.PublicKey)

	badV := append([]byte{}, sig...)
	badV[crypto.RecoveryIDOffset] = 7

	flipped := append([]byte{}, sig...)
	flipped[10] ^= 0x01

	type table struct {
		name string
		data []byte
		sig  []byte
		pub  []byte
		exp  error
	}

	tt := []table{
		{name: "altered-data", data: []byte("Jill"), sig: sig, pub: pub, exp: signature.ErrInvalidSignature},
		{name: "other-key", data: data, sig: sig, pub: otherPub, exp: signature.ErrInvalidSignature},
		{name: "short-sig", data: data, sig: sig[:10], pub: pub, exp: signature.ErrInvalidSignature},
		{name: "no-key", data: data, sig: sig, pub: nil, exp: signature.ErrInvalidPublicKey},
		{name: "recovery-id", data: data, sig: badV, pub: pub, exp: signature.ErrInvalidRecoveryID},
		{name: "bit-flip", data: data, sig: flipped, pub: pub, exp: signature.ErrInvalidSignature},
	}

	t.Log("Given the need to reject bad signatures.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := signature.Verify(tst.data, tst.sig, tst.pub)
				if !errors.Is(err, tst.exp) {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould reject the signature.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the signature.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
