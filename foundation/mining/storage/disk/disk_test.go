package disk_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/mining/foundation/mining/storage"
	"github.com/ardanlabs/mining/foundation/mining/storage/disk"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Disk(t *testing.T) {
	t.Log("Given the need to persist snapshots on disk.")
	{
		d, err := disk.New(filepath.Join(t.TempDir(), "zblock", "snapshot.json"))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open the storage: %v", failed, err)
		}
		defer d.Close()

		t.Log("\tWhen nothing has been written.")
		{
			if _, err := d.Read(); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("\t%s\tShould fail with ErrNotFound: got %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with ErrNotFound.", success)
		}

		t.Log("\tWhen snapshots are written.")
		{
			snap := storage.Snapshot{
				Tick:      42,
				Accounts:  []storage.Account{{Address: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Nonce: 1, Balance: "10"}},
				Contracts: []storage.Contract{{Name: "pot", Owner: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", Balance: "5", WithdrawAmount: "1"}},
			}

			if err := d.Write(storage.Snapshot{Tick: 1}); err != nil {
				t.Fatalf("\t%s\tShould be able to write: %v", failed, err)
			}
			if err := d.Write(snap); err != nil {
				t.Fatalf("\t%s\tShould be able to overwrite: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to write.", success)

			got, err := d.Read()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to read: %v", failed, err)
			}

			if diff := cmp.Diff(snap, got); diff != "" {
				t.Fatalf("\t%s\tShould read the last snapshot:\n%s", failed, diff)
			}
			t.Logf("\t%s\tShould read the last snapshot.", success)
		}

		t.Log("\tWhen the storage is reset.")
		{
			if err := d.Reset(); err != nil {
				t.Fatalf("\t%s\tShould be able to reset: %v", failed, err)
			}
			if _, err := d.Read(); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("\t%s\tShould have nothing to read: got %v", failed, err)
			}
			t.Logf("\t%s\tShould have nothing to read.", success)

			if err := d.Reset(); err != nil {
				t.Fatalf("\t%s\tShould be able to reset twice: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to reset twice.", success)
		}
	}
}
