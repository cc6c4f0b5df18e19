package provider

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
)

// defaultAgeMinutes is used when the listing carries no usable timestamp.
const defaultAgeMinutes = 60 * 24

// mapListing converts one API listing into a canonical token.
func (c *Client) mapListing(l listing, logoURL string) domain.Token {
	var price, volume24h, marketCap, changePct float64
	if usd := l.Quote.USD; usd != nil {
		price = usd.Price
		volume24h = usd.Volume24h
		marketCap = usd.MarketCap
		changePct = usd.PercentChange24h
	}

	return domain.Token{
		ID:         strconv.FormatInt(l.ID, 10),
		Name:       l.Name,
		Symbol:     strings.ToUpper(l.Symbol),
		AgeMinutes: ageMinutes(l.LastUpdated, c.now()),
		AvatarURL:  logoURL,
		Phase:      phaseFromRank(l.Rank),

		PriceUsd:       price,
		PriceChangePct: changePct,
		MarketCap:      marketCap,
		Liquidity:      estimateLiquidity(marketCap, volume24h),
		Volume24h:      volume24h,
		Txns:           estimateTxns(volume24h),
		Score:          scoreFromRank(l.Rank),
	}
}

// phaseFromRank derives the lifecycle phase from the market rank. Ranks in
// (50, 200] are final, the top 50 are migrated, everything else is new.
func phaseFromRank(rank int) domain.Phase {
	switch {
	case rank <= 0:
		return domain.PhaseNew
	case rank <= 50:
		return domain.PhaseMigrated
	case rank <= 200:
		return domain.PhaseFinal
	default:
		return domain.PhaseNew
	}
}

// ageMinutes converts the listing timestamp into whole minutes before now,
// at least 1. Missing or unparseable timestamps default to one day.
func ageMinutes(lastUpdated string, now time.Time) int64 {
	if lastUpdated == "" {
		return defaultAgeMinutes
	}
	updated, err := time.Parse(time.RFC3339, lastUpdated)
	if err != nil {
		return defaultAgeMinutes
	}

	mins := int64(math.Round(now.Sub(updated).Minutes()))
	if mins < 1 {
		return 1
	}
	return mins
}

// estimateLiquidity derives a liquidity figure: 5% of market cap when one
// exists, otherwise half the daily volume.
func estimateLiquidity(marketCap, volume24h float64) float64 {
	if marketCap > 0 {
		return marketCap * 0.05
	}
	return volume24h * 0.5
}

// estimateTxns derives 24h transaction counts from volume: one transaction
// per $1000 with a floor of 10, split 60/40 buys to sells.
func estimateTxns(volume24h float64) domain.Txns {
	if volume24h <= 0 {
		return domain.Txns{}
	}
	total := int64(math.Round(volume24h / 1000))
	if total < 10 {
		total = 10
	}
	buys := int64(math.Round(float64(total) * 0.6))
	return domain.Txns{Buys: buys, Sells: total - buys}
}

// scoreFromRank maps the market rank onto the display score.
func scoreFromRank(rank int) float64 {
	switch {
	case rank <= 0:
		return 70
	case rank <= 20:
		return 95
	case rank <= 100:
		return 90
	case rank <= 300:
		return 80
	default:
		return 70
	}
}
