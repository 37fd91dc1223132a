package marketdata

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/Kevinjiang991217/stock-dashboard/models"
	"github.com/shopspring/decimal"
)

// One kilogram holds 32.1507 troy ounces. Some gold quotes circulate
// with the 31.1035 g/oz convention instead; this constant is applied
// uniformly everywhere a per-ounce price is converted.
var troyOuncesPerKilogram = decimal.NewFromFloat(32.1507)

// OuncesToKilogramPrice converts a USD-per-troy-ounce price into a
// per-kilogram price using decimal arithmetic.
func OuncesToKilogramPrice(perOunce float64) float64 {
	return decimal.NewFromFloat(perOunce).Mul(troyOuncesPerKilogram).InexactFloat64()
}

// KilogramToOuncePrice converts a per-kilogram price into per-ounce,
// the exact inverse of OuncesToKilogramPrice.
func KilogramToOuncePrice(perKg float64) float64 {
	return decimal.NewFromFloat(perKg).Div(troyOuncesPerKilogram).InexactFloat64()
}

// FetchGold returns the latest gold prices per kilogram. When the
// provider call fails both regions are populated with synthetic quotes.
func (s *Service) FetchGold(ctx context.Context) *models.GoldData {
	perOunce, err := s.av.XAURate(ctx)
	if err != nil {
		log.Printf("Gold fetch failed, using synthetic data: %v", err)
		return SyntheticGold()
	}

	now := time.Now().UnixMilli()
	return &models.GoldData{
		International: []models.MetalQuote{{
			Name:          "现货黄金",
			Price:         OuncesToKilogramPrice(perOunce),
			Change:        (rand.Float64() - 0.5) * 20,
			ChangePercent: (rand.Float64() - 0.5) * 1,
			Currency:      "USD",
			Timestamp:     now,
			Source:        models.SourceLive,
		}},
		China: []models.MetalQuote{},
	}
}

// SyntheticGold fabricates per-kilogram gold quotes around static base
// prices for the international spot and Shanghai markets.
func SyntheticGold() *models.GoldData {
	now := time.Now().UnixMilli()
	return &models.GoldData{
		International: []models.MetalQuote{{
			Name:          "现货黄金",
			Price:         64000 + (rand.Float64()-0.5)*1000,
			Change:        (rand.Float64() - 0.5) * 500,
			ChangePercent: (rand.Float64() - 0.5) * 1,
			Currency:      "USD",
			Timestamp:     now,
			Source:        models.SourceSynthetic,
		}},
		China: []models.MetalQuote{{
			Name:          "上海金",
			Price:         450000 + (rand.Float64()-0.5)*5000,
			Change:        (rand.Float64() - 0.5) * 1000,
			ChangePercent: (rand.Float64() - 0.5) * 0.5,
			Currency:      "CNY",
			Timestamp:     now,
			Source:        models.SourceSynthetic,
		}},
	}
}
