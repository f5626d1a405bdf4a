package ledger

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/shopspring/decimal"
)

var (
	seedFirstNames = []string{"Ana", "Bruno", "Carla", "Diego", "Elisa", "Fabio", "Gabriela", "Hugo", "Iris", "Joana"}
	seedLastNames  = []string{"Silva", "Souza", "Costa", "Lima", "Pereira", "Almeida", "Rocha", "Dias"}
	seedStreets    = []string{"Rua das Flores", "Avenida Central", "Rua do Porto", "Travessa Nova"}
	seedItems      = []string{"Paint can", "Box of screws", "Diesel fill-up", "Engine oil", "Delivery fee", "Repair labor", "Garden hose", "Light bulbs"}
	seedNotes      = []string{"cash", "bank transfer", "card", ""}
)

// SeedOptions controls demo data generation.
type SeedOptions struct {
	Now       time.Time
	Rand      *rand.Rand
	OnCreated func() // called once per customer
	Customers int
}

// Seed fills the ledger with demo customers, each with one to five debits
// dated within the last three months and one to three payments within the last two.
func (s *Service) Seed(ctx context.Context, opts SeedOptions) (int, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	created := 0
	for i := 0; i < opts.Customers; i++ {
		c, err := s.CreateCustomer(ctx, model.CustomerInput{
			Name:    fmt.Sprintf("%s %s", pick(rng, seedFirstNames), pick(rng, seedLastNames)),
			Phone:   fmt.Sprintf("555-%04d", rng.IntN(10000)),
			Address: fmt.Sprintf("%s, %d", pick(rng, seedStreets), 1+rng.IntN(999)),
		})
		if err != nil {
			return created, err
		}

		for n := 1 + rng.IntN(5); n > 0; n-- {
			if _, err := s.CreateDebit(ctx, c.ID, model.DebitInput{
				Description: pick(rng, seedItems),
				Category:    pick(rng, model.Categories()).String(),
				Amount:      randomAmount(rng, 20, 500),
				Date:        randomDate(rng, now, 3),
			}); err != nil {
				return created, err
			}
		}
		for n := 1 + rng.IntN(3); n > 0; n-- {
			if _, err := s.CreatePayment(ctx, c.ID, model.PaymentInput{
				Description: pick(rng, seedNotes),
				Amount:      randomAmount(rng, 10, 400),
				Date:        randomDate(rng, now, 2),
			}); err != nil {
				return created, err
			}
		}

		created++
		if opts.OnCreated != nil {
			opts.OnCreated()
		}
	}
	return created, nil
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func randomAmount(rng *rand.Rand, lo, hi int64) string {
	cents := lo*100 + rng.Int64N((hi-lo)*100+1)
	return model.FormatAmount(decimal.New(cents, -model.AmountPlaces))
}

func randomDate(rng *rand.Rand, now time.Time, months int) string {
	start := model.TruncateDate(now).AddDate(0, -months, 0)
	span := int64(now.Sub(start) / (24 * time.Hour))
	return start.AddDate(0, 0, int(rng.Int64N(span+1))).Format(model.DateLayout)
}
