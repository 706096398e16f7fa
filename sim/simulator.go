// sim/simulator.go
package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/supplychain-sim/supplychain-sim/sim/trace"
)

// Simulator drives one world through episodes of fixed-length ticks.
// Per tick it applies the decision layer's actions, runs the three world
// passes (step, flush, post-step), and collects metrics between the flush
// and post-step passes, when the frame snapshot is consistent.
type Simulator struct {
	World   *World
	Clock   int64
	Horizon int64
	Metrics *Metrics
	Policy  ActionProvider      // may be nil: no actions are generated
	Trace   *trace.EpisodeTrace // may be nil: events are not recorded
}

// NewSimulator creates a Simulator over an initialized world and installs
// itself as the world's event recorder.
func NewSimulator(w *World, horizon int64) *Simulator {
	s := &Simulator{
		World:   w,
		Horizon: horizon,
		Metrics: NewMetrics(),
	}
	w.SetRecorder(s)
	return s
}

// RunEpisode advances the world from tick 0 to the horizon and returns the
// episode's metrics.
func (s *Simulator) RunEpisode() *Metrics {
	for tick := int64(0); tick < s.Horizon; tick++ {
		s.StepTick(tick)
	}
	logrus.Infof("[tick %07d] episode ended", s.Clock)
	return s.Metrics
}

// StepTick runs the full per-tick protocol once. Exposed so external
// training loops can interleave observation and action between ticks.
func (s *Simulator) StepTick(tick int64) {
	s.Clock = tick
	logrus.Debugf("[tick %07d] stepping world", tick)

	if s.Policy != nil {
		s.applyActions(s.Policy.Actions(s.World, tick))
	}

	s.World.Step(tick)
	s.World.FlushStates(tick)
	s.collect()
	s.World.PostStep(tick)
	s.Metrics.Ticks = tick + 1
}

// Reset re-arms the world and the bookkeeping for a fresh episode. The
// graph survives; ledgers, counters, vehicle jobs, and demand streams reset.
func (s *Simulator) Reset() {
	s.World.Reset()
	s.Metrics = NewMetrics()
	s.Clock = 0
	if s.Trace != nil {
		s.Trace.Reset()
	}
}

func (s *Simulator) applyActions(actions ActionSet) {
	for unitID, a := range actions.Consumer {
		if err := s.World.SetConsumerAction(unitID, a); err != nil {
			logrus.Warnf("[tick %07d] dropping action: %v", s.Clock, err)
		}
	}
	for unitID, a := range actions.Manufacture {
		if err := s.World.SetManufactureAction(unitID, a); err != nil {
			logrus.Warnf("[tick %07d] dropping action: %v", s.Clock, err)
		}
	}
}

// collect folds the tick's flushed counters into the episode metrics.
func (s *Simulator) collect() {
	for _, facilityID := range s.World.FacilityIDs() {
		f := s.World.Facility(facilityID)
		s.Metrics.TransportCost += f.Distribution().TransportCost()
		s.Metrics.DelayOrderPenalty += f.Distribution().DelayPenaltyTotal()
	}
	s.World.EachProduct(func(f *Facility, p *ProductUnit) {
		if p.Seller != nil {
			s.Metrics.QuantitySold += p.Seller.Sold()
			s.Metrics.TotalDemand += p.Seller.Demand()
		}
		if p.Manufacture != nil {
			s.Metrics.QuantityManufactured += p.Manufacture.Manufactured()
		}
		if p.Consumer != nil {
			s.Metrics.OrderProductCost += p.Consumer.OrderProductCost()
			s.Metrics.OrderCost += p.Consumer.OrderCost()
		}
	})
}

// === Recorder ===

// OrderPlaced implements Recorder.
func (s *Simulator) OrderPlaced(tick, sourceID, destinationID, productID, quantity int64) {
	s.Metrics.OrdersPlaced++
	s.Metrics.QuantityOrdered += quantity
	if s.Trace != nil {
		s.Trace.RecordOrder(trace.OrderRecord{
			Tick: tick, SourceID: sourceID, DestinationID: destinationID,
			ProductID: productID, Quantity: quantity,
		})
	}
}

// Delivered implements Recorder.
func (s *Simulator) Delivered(tick, sourceID, destinationID, productID, quantity, requested int64) {
	s.Metrics.QuantityDelivered += quantity
	if s.Trace != nil {
		s.Trace.RecordDelivery(trace.DeliveryRecord{
			Tick: tick, SourceID: sourceID, DestinationID: destinationID,
			ProductID: productID, Quantity: quantity, Requested: requested,
		})
	}
}

// Abandoned implements Recorder.
func (s *Simulator) Abandoned(tick, sourceID, destinationID, productID, quantity int64) {
	s.Metrics.OrdersAbandoned++
	s.Metrics.QuantityAbandoned += quantity
	if s.Trace != nil {
		s.Trace.RecordAbandon(trace.AbandonRecord{
			Tick: tick, SourceID: sourceID, DestinationID: destinationID,
			ProductID: productID, Quantity: quantity,
		})
	}
}
