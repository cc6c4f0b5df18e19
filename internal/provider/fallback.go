package provider

import "github.com/sangram-sethi/Axiom-pulse/internal/domain"

// fallbackTokens is the static snapshot served when the live fetch is
// unavailable.
var fallbackTokens = []domain.Token{
	{
		ID:             "fwog",
		Name:           "FWOG",
		Symbol:         "FWOG",
		AgeMinutes:     60 * 24,
		Phase:          domain.PhaseNew,
		PriceUsd:       0.00045,
		PriceChangePct: 1.48,
		MarketCap:      6_630_000,
		Liquidity:      1_750_000,
		Volume24h:      31_300,
		Txns:           domain.Txns{Buys: 49, Sells: 38},
		Score:          86,
	},
	{
		ID:             "believe",
		Name:           "BELIEVE",
		Symbol:         "BELIEVE",
		AgeMinutes:     5,
		Phase:          domain.PhaseNew,
		PriceUsd:       0.0011,
		PriceChangePct: 65.2,
		MarketCap:      11_600,
		Liquidity:      13_900,
		Volume24h:      23_100,
		Txns:           domain.Txns{Buys: 305, Sells: 131},
		Score:          92,
	},
	{
		ID:             "apa",
		Name:           "APA",
		Symbol:         "APA",
		AgeMinutes:     21,
		Phase:          domain.PhaseFinal,
		PriceUsd:       0.00036,
		PriceChangePct: 32.75,
		MarketCap:      361_000,
		Liquidity:      24_800,
		Volume24h:      12_300,
		Txns:           domain.Txns{Buys: 220, Sells: 79},
		Score:          80,
	},
	{
		ID:             "foreign",
		Name:           "FOREIGN",
		Symbol:         "FOREIGN",
		AgeMinutes:     50,
		Phase:          domain.PhaseFinal,
		PriceUsd:       0.00011,
		PriceChangePct: -0.57,
		MarketCap:      112_000,
		Liquidity:      32_300,
		Volume24h:      7_930,
		Txns:           domain.Txns{Buys: 112, Sells: 44},
		Score:          71,
	},
	{
		ID:             "mutt",
		Name:           "MUTT Official Pump",
		Symbol:         "MUTT",
		AgeMinutes:     60,
		Phase:          domain.PhaseMigrated,
		PriceUsd:       0.00018,
		PriceChangePct: 11.22,
		MarketCap:      183_000,
		Liquidity:      41_500,
		Volume24h:      9_190,
		Txns:           domain.Txns{Buys: 112, Sells: 52},
		Score:          88,
	},
}

// FallbackTokens returns a copy of the static token set.
func FallbackTokens() []domain.Token {
	out := make([]domain.Token, len(fallbackTokens))
	copy(out, fallbackTokens)
	return out
}
