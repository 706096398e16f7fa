package sim

import "math"

// ProductUnit groups the units of one SKU at one facility. The child slots
// are explicit and optional: produced SKUs get a manufacture unit, purchased
// SKUs a consumer, and a seller exists wherever local demand does. The
// children list carries the same units in a stable order for uniform
// lifecycle dispatch.
type ProductUnit struct {
	unitBase
	productID int64
	price     int64

	Consumer    *ConsumerUnit
	Seller      *SellerUnit
	Manufacture Manufacturer

	children []Unit // stable order: manufacture, consumer, seller
}

// ProductID returns the SKU this unit aggregates.
func (p *ProductUnit) ProductID() int64 { return p.productID }

// Price returns the facility's selling price for this SKU.
func (p *ProductUnit) Price() int64 { return p.price }

func (p *ProductUnit) Initialize() {
	if sku := p.facility().SKU(p.productID); sku != nil {
		p.price = sku.Price
	}
	for _, child := range p.children {
		child.Initialize()
	}
}

func (p *ProductUnit) Step(tick int64) {
	for _, child := range p.children {
		child.Step(tick)
	}
}

func (p *ProductUnit) FlushStates(tick int64) {
	for _, child := range p.children {
		child.FlushStates(tick)
	}
}

func (p *ProductUnit) PostStep(tick int64) {
	for _, child := range p.children {
		child.PostStep(tick)
	}
}

func (p *ProductUnit) Reset() {
	for _, child := range p.children {
		child.Reset()
	}
}

// The aggregate queries below fan out over the facility graph: a node with a
// local seller answers from its own sale statistics, any other node sums (or
// maxes) the answers of its downstream facilities for the same SKU. They are
// read-only observations for policy layers and never affect simulation state.

// LatestSale returns the most recent tick's sold quantity downstream.
func (p *ProductUnit) LatestSale() int64 {
	if p.Seller != nil {
		return p.Seller.LatestSale()
	}
	var total int64
	for _, downstream := range p.downstreamProducts() {
		total += downstream.LatestSale()
	}
	return total
}

// SaleMean returns the summed mean demand downstream.
func (p *ProductUnit) SaleMean() float64 {
	if p.Seller != nil {
		return p.Seller.SaleMean()
	}
	var total float64
	for _, downstream := range p.downstreamProducts() {
		total += downstream.SaleMean()
	}
	return total
}

// SaleStd returns the downstream demand deviation, combined under an
// independence assumption across branches.
func (p *ProductUnit) SaleStd() float64 {
	if p.Seller != nil {
		return p.Seller.SaleStd()
	}
	downstreams := p.downstreamProducts()
	var total float64
	for _, downstream := range downstreams {
		total += downstream.SaleStd()
	}
	return total / math.Sqrt(math.Max(1, float64(len(downstreams))))
}

// SellingPrice returns the highest price at which the SKU sells downstream.
func (p *ProductUnit) SellingPrice() int64 {
	if p.Seller != nil {
		return p.price
	}
	var best int64
	for _, downstream := range p.downstreamProducts() {
		if price := downstream.SellingPrice(); price > best {
			best = price
		}
	}
	return best
}

// MaxLeadTime returns the largest lead time among the consumer's sources,
// or 1 when no consumer or source exists.
func (p *ProductUnit) MaxLeadTime() int64 {
	leadTime := int64(1)
	if p.Consumer == nil {
		return leadTime
	}
	for _, sourceID := range p.Consumer.Sources() {
		source := p.world.Facility(sourceID)
		if source == nil {
			continue
		}
		if sku := source.SKU(p.productID); sku != nil && sku.LeadTime > leadTime {
			leadTime = sku.LeadTime
		}
	}
	return leadTime
}

func (p *ProductUnit) downstreamProducts() []*ProductUnit {
	ids := p.facility().Downstreams(p.productID)
	products := make([]*ProductUnit, 0, len(ids))
	for _, facilityID := range ids {
		facility := p.world.Facility(facilityID)
		if facility == nil {
			continue
		}
		if product := facility.Product(p.productID); product != nil {
			products = append(products, product)
		}
	}
	return products
}
