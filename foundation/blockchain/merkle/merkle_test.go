package merkle_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func leaves(n int) []signature.Digest {
	ls := make([]signature.Digest, n)
	for i := range ls {
		ls[i] = signature.Hash([]byte(fmt.Sprintf("leaf-%d", i)))
	}
	return ls
}

// =============================================================================

func TestEmptyTree(t *testing.T) {
	tree := merkle.NewTree(nil)

	if tree.Root() != (signature.Digest{}) {
		t.Fatalf("\t%s\tShould get a zero root for an empty tree.", failed)
	}
	t.Logf("\t%s\tShould get a zero root for an empty tree.", success)

	if _, _, err := tree.Proof(signature.Hash(nil)); !errors.Is(err, merkle.ErrNotFound) {
		t.Fatalf("\t%s\tShould not find a proof in an empty tree: %v", failed, err)
	}
	t.Logf("\t%s\tShould not find a proof in an empty tree.", success)
}

func TestProofs(t *testing.T) {
	sizes := []int{1, 2, 3, 4, 5, 8, 11}

	t.Log("Given the need to prove leaves are part of a tree.")
	{
		for testID, size := range sizes {
			f := func(t *testing.T) {
				ls := leaves(size)
				tree := merkle.NewTree(ls)
				root := tree.Root()

				t.Logf("\tTest %d:\tWhen handling %d leaves.", testID, size)
				{
					for i, leaf := range ls {
						proof, order, err := tree.Proof(leaf)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to get a proof for leaf %d: %v", failed, testID, i, err)
						}

						if !merkle.VerifyProof(leaf, root, proof, order) {
							t.Fatalf("\t%s\tTest %d:\tShould be able to verify the proof for leaf %d.", failed, testID, i)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to verify every leaf.", success, testID)

					other := signature.Hash([]byte("not-a-leaf"))
					proof, order, _ := tree.Proof(ls[0])
					if merkle.VerifyProof(other, root, proof, order) {
						t.Fatalf("\t%s\tTest %d:\tShould not verify a foreign leaf.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not verify a foreign leaf.", success, testID)
				}
			}

			t.Run(fmt.Sprintf("size-%d", size), f)
		}
	}
}

func TestRootChanges(t *testing.T) {
	ls := leaves(4)
	root := merkle.NewTree(ls).Root()

	if merkle.NewTree(ls).Root() != root {
		t.Fatalf("\t%s\tShould get the same root for the same leaves.", failed)
	}
	t.Logf("\t%s\tShould get the same root for the same leaves.", success)

	ls[2][0] ^= 0x01
	if merkle.NewTree(ls).Root() == root {
		t.Fatalf("\t%s\tShould get a different root when a leaf changes.", failed)
	}
	t.Logf("\t%s\tShould get a different root when a leaf changes.", success)
}
