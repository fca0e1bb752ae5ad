package clock_test

import (
	"sync"
	"testing"

	"github.com/ardanlabs/mining/foundation/mining/clock"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Chain(t *testing.T) {
	t.Log("Given the need to drive the block height.")
	{
		t.Log("\tWhen mining blocks on a new chain.")
		{
			c := clock.New(5)
			if got := c.CurrentTick(); got != 5 {
				t.Fatalf("\t%s\tShould start at the specified height: got %d", failed, got)
			}
			t.Logf("\t%s\tShould start at the specified height.", success)

			if got := c.Advance(3); got != 8 {
				t.Fatalf("\t%s\tShould advance by the number of blocks: got %d", failed, got)
			}
			t.Logf("\t%s\tShould advance by the number of blocks.", success)

			if got := c.MineTo(20); got != 20 {
				t.Fatalf("\t%s\tShould mine to the specified height: got %d", failed, got)
			}
			t.Logf("\t%s\tShould mine to the specified height.", success)

			if got := c.MineTo(10); got != 20 || c.CurrentTick() != 20 {
				t.Fatalf("\t%s\tShould never move backwards: got %d", failed, got)
			}
			t.Logf("\t%s\tShould never move backwards.", success)
		}

		t.Log("\tWhen advancing from many goroutines.")
		{
			c := clock.New(0)

			const g = 50
			var wg sync.WaitGroup
			wg.Add(g)
			for i := 0; i < g; i++ {
				go func() {
					defer wg.Done()
					c.Advance(1)
				}()
			}
			wg.Wait()

			if got := c.CurrentTick(); got != g {
				t.Fatalf("\t%s\tShould count every block: got %d", failed, got)
			}
			t.Logf("\t%s\tShould count every block.", success)
		}
	}
}
