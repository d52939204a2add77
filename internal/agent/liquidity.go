package agent

import (
	"math"

	"github.com/mandes/MandesCDA/internal/domain"
)

// Empirical action and size parameters of the Cui/Brabazon liquidity
// trader: action split between cancelling and submitting, order kind and
// aggressiveness split for submissions, log-normal size draws per
// aggressiveness class and a truncated power law for off-spread
// placement depth.
const (
	cancelProb = 0.4771
	marketProb = 0.0375

	crossingCum = 0.0032
	inSpreadCum = 0.1010
	atSpreadCum = 0.2736

	marketSizeScale, marketSizeShape     = 7.5663, 1.3355
	crossingSizeScale, crossingSizeShape = 8.4701, 1.1982
	inSpreadSizeScale, inSpreadSizeShape = 7.8709, 0.9799
	atSpreadSizeScale, atSpreadSizeShape = 7.8929, 0.8571
	offSpreadSizeScale, offSpreadShape   = 8.2166, 0.9545

	priceLawBeta = 1.7248
	priceLawXmin = 0.05
)

// Liquidity is a one-sided random liquidity trader. On each wake-up it
// either cancels its most recent resting order or submits a new order
// whose kind, price aggressiveness and size follow the empirical
// distributions above.
type Liquidity struct {
	Buyer bool
}

// NewLiquidity creates a liquidity trader for one side of the market.
func NewLiquidity(buyer bool) *Liquidity {
	return &Liquidity{Buyer: buyer}
}

// Wake picks this round's action. Both best prices must exist for limit
// placement; when the book gives no reference the trader sits out and
// leaves refilling to the market maker.
func (l *Liquidity) Wake(v *View) Instruction {
	side := domain.SideSell
	if l.Buyer {
		side = domain.SideBuy
	}

	if v.Rand.Float64() <= cancelProb {
		target := v.Portfolio.CancelTarget(side)
		if target == nil {
			return nil
		}
		return Cancel{Order: target}
	}

	if v.Rand.Float64() < marketProb {
		size := int64(math.Floor(v.Rand.LogNormal(marketSizeScale, marketSizeShape)))
		return Submit{Spec: OrderSpec{Side: side, Kind: domain.KindMarket, Size: size}}
	}

	bestBid := v.Book.BestPrice(domain.SideBuy)
	bestAsk := v.Book.BestPrice(domain.SideSell)
	if bestBid == 0 || bestAsk == 0 {
		return nil
	}

	var price, size int64
	action := v.Rand.Float64()

	switch {
	case action <= crossingCum:
		// Crossing: priced at the opposite best, trades immediately.
		if l.Buyer {
			price = bestAsk
		} else {
			price = bestBid
		}
		size = int64(math.Floor(v.Rand.LogNormal(crossingSizeScale, crossingSizeShape)))

	case action <= inSpreadCum:
		price = bestBid + int64(math.Floor(v.Rand.Float64()*float64(bestAsk-bestBid)))
		size = int64(math.Floor(v.Rand.LogNormal(inSpreadSizeScale, inSpreadSizeShape)))

	case action <= atSpreadCum:
		// Join the own-side best.
		if l.Buyer {
			price = bestBid
		} else {
			price = bestAsk
		}
		size = int64(math.Floor(v.Rand.LogNormal(atSpreadSizeScale, atSpreadSizeShape)))

	default:
		delta := priceLawDelta(v)
		if l.Buyer {
			price = bestBid - delta
		} else {
			price = bestAsk + delta
		}
		size = int64(math.Floor(v.Rand.LogNormal(offSpreadSizeScale, offSpreadShape)))
	}

	return Submit{Spec: OrderSpec{Side: side, Kind: domain.KindLimit, Size: size, Price: price}}
}

// priceLawDelta draws the off-spread placement depth in price units.
func priceLawDelta(v *View) int64 {
	return int64(math.Round(v.Rand.PowerLaw(priceLawBeta, priceLawXmin) * math.Pow(10, float64(v.PriceDigits))))
}
