package sim

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/supplychain-sim/supplychain-sim/sim/frame"
)

// SellerUnit fills stochastic per-tick market demand for one SKU from the
// facility's storage. Unmet demand may be carried as backlog through the
// configured ratio; the demand statistics themselves come from the external
// DemandSource hook.
type SellerUnit struct {
	unitBase
	productID int64

	demandSource DemandSource
	backlogRatio float64

	saleHist []float64 // rolling demand history for mean/std queries

	// per-tick counters, flushed then cleared
	demand  int64
	sold    int64
	backlog int64

	// cumulative, cleared on reset
	totalSold   int64
	totalDemand int64
}

// ProductID returns the SKU this seller trades.
func (s *SellerUnit) ProductID() int64 { return s.productID }

// Sold returns the quantity sold this tick.
func (s *SellerUnit) Sold() int64 { return s.sold }

// Demand returns the market demand seen this tick.
func (s *SellerUnit) Demand() int64 { return s.demand }

// LatestSale returns the most recent tick's sold quantity.
func (s *SellerUnit) LatestSale() int64 { return s.sold }

// SaleMean returns the mean of the tracked demand history.
func (s *SellerUnit) SaleMean() float64 {
	if len(s.saleHist) == 0 {
		return 0
	}
	return stat.Mean(s.saleHist, nil)
}

// SaleStd returns the standard deviation of the tracked demand history.
func (s *SellerUnit) SaleStd() float64 {
	if len(s.saleHist) < 2 {
		return 0
	}
	sd := stat.StdDev(s.saleHist, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

func (s *SellerUnit) Initialize() {
	s.saleHist = make([]float64, s.world.settings.SaleHistLen)
}

// Step samples demand and sells whatever storage can cover.
func (s *SellerUnit) Step(tick int64) {
	demand := s.demandSource.Sample(tick)
	sold := s.facility().Storage().TakeAvailable(s.productID, demand)

	s.demand = demand
	s.sold = sold
	s.totalDemand += demand
	s.totalSold += sold
	if demand > sold {
		s.backlog = int64(float64(demand-sold) * s.backlogRatio)
	}

	if len(s.saleHist) > 0 {
		copy(s.saleHist, s.saleHist[1:])
		s.saleHist[len(s.saleHist)-1] = float64(demand)
	}
}

func (s *SellerUnit) FlushStates(tick int64) {
	fs := s.world.frame
	if s.sold > 0 {
		fs.SetInt(s.id, frame.FieldSold, s.sold)
		fs.SetInt(s.id, frame.FieldTotalSold, s.totalSold)
	}
	if s.demand > 0 {
		fs.SetInt(s.id, frame.FieldDemand, s.demand)
		fs.SetInt(s.id, frame.FieldTotalDemand, s.totalDemand)
	}
	if s.backlog > 0 {
		fs.SetInt(s.id, frame.FieldBacklog, s.backlog)
	}
}

func (s *SellerUnit) PostStep(tick int64) {
	fs := s.world.frame
	if s.sold > 0 {
		fs.SetInt(s.id, frame.FieldSold, 0)
		s.sold = 0
	}
	if s.demand > 0 {
		fs.SetInt(s.id, frame.FieldDemand, 0)
		s.demand = 0
	}
	if s.backlog > 0 {
		fs.SetInt(s.id, frame.FieldBacklog, 0)
		s.backlog = 0
	}
}

// Reset rewinds the demand stream and clears every counter so a new episode
// replays the same draws.
func (s *SellerUnit) Reset() {
	s.demandSource.Reset()
	s.saleHist = make([]float64, s.world.settings.SaleHistLen)
	s.demand = 0
	s.sold = 0
	s.backlog = 0
	s.totalSold = 0
	s.totalDemand = 0
}
