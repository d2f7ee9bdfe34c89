// The seed binary inserts randomly generated sales leads through the lead
// service, so seeded rows get the same scoring and change tracking as rows
// created through the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/db"
	"leadportal_backend/platform/logger"
)

var quarters = []string{"Q1 2025", "Q2 2025", "Q3 2025", "Q4 2025"}

var companyStems = []string{
	"Apex", "Blue Harbor", "Cobalt", "Crestline", "Evergreen", "Falcon",
	"Granite Peak", "Helios", "Ironwood", "Lattice", "Meridian", "Northwind",
	"Oakfield", "Pinnacle", "Quartz", "Redwood", "Silverline", "Summit",
	"Tidewater", "Vanguard",
}

var companySuffixes = []string{
	"Inc.", "LLC", "Corp.", "Holdings", "Ventures", "Systems", "Solutions",
	"Partners", "Group",
}

var firstNames = []string{
	"Ava", "Daniel", "Elena", "James", "Jordan", "Maya", "Noah", "Priya",
	"Samuel", "Sofia", "Tomás", "Wei",
}

var lastNames = []string{
	"Anderson", "Chen", "Garcia", "Johnson", "Kim", "Nguyen", "Okafor",
	"Patel", "Rossi", "Schmidt", "Silva", "Williams",
}

var noteSamples = []string{
	"Contacted client, awaiting response.",
	"Sent proposal, pending approval.",
	"Negotiations ongoing, positive signs.",
	"Lost contact, follow-up needed.",
	"Client requested revised pricing.",
}

func main() {
	count := flag.Int("count", 5, "number of leads to insert")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	svc := service.New(repository.New(pool), nil, events.NewInMemoryBus(log), log)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	inserted, failed := 0, 0
	for i := 0; i < *count; i++ {
		if _, err := svc.Create(ctx, randomLead(rng)); err != nil {
			log.Error("failed to insert lead", "error", err)
			failed++
			continue
		}
		inserted++
	}

	log.Info("seed completed", "inserted", inserted, "failed", failed)
}

func randomLead(rng *rand.Rand) transport.CreateLeadRequest {
	quarter := quarters[rng.Intn(len(quarters))]
	status, stage := randomStatusAndStage(rng)
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	base := 20 + rng.Intn(31)

	return transport.CreateLeadRequest{
		CompanyName:         randomCompanyName(rng),
		Quarter:             quarter,
		MarketCapUSD:        50_000_000 + rng.Int63n(10_000_000_000-50_000_000),
		AnnualSalesUSD:      5_000_000 + rng.Int63n(2_000_000_000-5_000_000),
		NumberOfCustomers:   500 + rng.Intn(100_000-500),
		PrimaryMarketRegion: domain.Regions[rng.Intn(len(domain.Regions))],
		SalesContactName:    first + " " + last,
		SalesContactEmail:   contactEmail(first, last),
		DateOfLastContact:   randomDateInQuarter(rng, quarter),
		LeadStatus:          status,
		PipelineStage:       stage,
		LastDealSizeUSD:     25_000 + rng.Int63n(5_000_000-25_000),
		LeadSource:          domain.Sources[rng.Intn(len(domain.Sources))],
		Notes:               noteSamples[rng.Intn(len(noteSamples))],
		CRMActivityFlag:     rng.Intn(2) == 0,
		ScoreBase:           &base,
	}
}

// randomStatusAndStage picks a valid status and stage pairing.
func randomStatusAndStage(rng *rand.Rand) (string, string) {
	type pair struct{ status, stage string }
	var choices []pair
	for _, status := range domain.Statuses {
		for _, stage := range domain.StatusStages[status] {
			choices = append(choices, pair{status, stage})
		}
	}
	picked := choices[rng.Intn(len(choices))]
	return picked.status, picked.stage
}

func randomCompanyName(rng *rand.Rand) string {
	stem := companyStems[rng.Intn(len(companyStems))]
	suffix := companySuffixes[rng.Intn(len(companySuffixes))]
	return stem + " " + suffix
}

func contactEmail(first, last string) string {
	sanitize := func(s string) string {
		s = strings.ToLower(s)
		s = strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' {
				return r
			}
			return -1
		}, s)
		return s
	}
	return fmt.Sprintf("%s.%s@example.com", sanitize(first), sanitize(last))
}

// randomDateInQuarter returns a YYYY-MM-DD date inside the quarter.
func randomDateInQuarter(rng *rand.Rand, quarter string) string {
	ranges := map[string][2]time.Time{
		"Q1 2025": {time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)},
		"Q2 2025": {time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
		"Q3 2025": {time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)},
		"Q4 2025": {time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	r, ok := ranges[quarter]
	if !ok {
		r = ranges["Q1 2025"]
	}
	days := int(r[1].Sub(r[0]).Hours() / 24)
	return r[0].AddDate(0, 0, rng.Intn(days+1)).Format("2006-01-02")
}
