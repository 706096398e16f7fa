// Package topology loads supply-chain network scenarios from YAML and
// builds the immutable world graph they describe.
package topology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the top-level scenario configuration.
// Loaded from YAML via Load(path).
type Spec struct {
	Name       string         `yaml:"name"`
	Seed       int64          `yaml:"seed"`
	Settings   SettingsSpec   `yaml:"settings"`
	SKUs       []SKUSpec      `yaml:"skus"`
	Facilities []FacilitySpec `yaml:"facilities"`
	Links      []LinkSpec     `yaml:"links"`
}

// SettingsSpec carries the network-wide knobs.
type SettingsSpec struct {
	PendingOrderLen int `yaml:"pending_order_len"`
	SaleHistLen     int `yaml:"sale_hist_len"`
}

// SKUSpec defines one catalog entry. BOM maps input product ID to the units
// consumed per output unit; omit it for raw materials.
type SKUSpec struct {
	ID   int64           `yaml:"id"`
	Name string          `yaml:"name"`
	BOM  map[int64]int64 `yaml:"bom,omitempty"`
}

// FacilitySpec defines one network node.
type FacilitySpec struct {
	ID                int64             `yaml:"id"`
	Name              string            `yaml:"name"`
	X                 int               `yaml:"x"`
	Y                 int               `yaml:"y"`
	Capacity          int64             `yaml:"capacity"`
	OrderCost         int64             `yaml:"order_cost"`
	DelayOrderPenalty int64             `yaml:"delay_order_penalty"`
	UnitTransportCost int64             `yaml:"unit_transport_cost"`
	VehiclePatience   int64             `yaml:"vehicle_patience"`
	Vehicles          int               `yaml:"vehicles"`
	SKUs              []FacilitySKUSpec `yaml:"skus"`
}

// FacilitySKUSpec configures one SKU a facility carries.
type FacilitySKUSpec struct {
	ProductID    int64   `yaml:"product_id"`
	Kind         string  `yaml:"kind"` // "produced" or "purchased"
	Price        int64   `yaml:"price"`
	Cost         int64   `yaml:"cost"`
	InitStock    int64   `yaml:"init_stock"`
	LeadTime     int64   `yaml:"lead_time"`
	SaleGamma    float64 `yaml:"sale_gamma,omitempty"`
	BacklogRatio float64 `yaml:"backlog_ratio,omitempty"`
	Manufacture  string  `yaml:"manufacture,omitempty"` // "simple" (default) or "sourced"
}

// LinkSpec records that Upstream supplies ProductID to Downstream.
type LinkSpec struct {
	ProductID  int64 `yaml:"product_id"`
	Upstream   int64 `yaml:"upstream"`
	Downstream int64 `yaml:"downstream"`
}

// Load reads and validates a scenario spec from a YAML file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology spec: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario spec from YAML bytes.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse topology spec: %w", err)
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Spec) applyDefaults() {
	if s.Settings.PendingOrderLen == 0 {
		s.Settings.PendingOrderLen = 4
	}
	if s.Settings.SaleHistLen == 0 {
		s.Settings.SaleHistLen = 4
	}
	for i := range s.Facilities {
		f := &s.Facilities[i]
		if f.VehiclePatience == 0 {
			f.VehiclePatience = 100
		}
		if f.UnitTransportCost == 0 {
			f.UnitTransportCost = 1
		}
	}
}

// Validate checks referential integrity: every facility SKU must exist in
// the catalog, every link must name known facilities, and identifiers must
// be unique and positive.
func (s *Spec) Validate() error {
	if len(s.Facilities) == 0 {
		return fmt.Errorf("topology %q: no facilities", s.Name)
	}

	catalog := make(map[int64]bool, len(s.SKUs))
	for _, sku := range s.SKUs {
		if sku.ID <= 0 {
			return fmt.Errorf("topology %q: sku id %d must be positive", s.Name, sku.ID)
		}
		if catalog[sku.ID] {
			return fmt.Errorf("topology %q: duplicate sku id %d", s.Name, sku.ID)
		}
		catalog[sku.ID] = true
	}

	facilities := make(map[int64]bool, len(s.Facilities))
	for _, f := range s.Facilities {
		if f.ID <= 0 {
			return fmt.Errorf("topology %q: facility id %d must be positive", s.Name, f.ID)
		}
		if facilities[f.ID] {
			return fmt.Errorf("topology %q: duplicate facility id %d", s.Name, f.ID)
		}
		facilities[f.ID] = true
		if f.Capacity <= 0 {
			return fmt.Errorf("facility %q: capacity must be positive", f.Name)
		}
		for _, sku := range f.SKUs {
			if !catalog[sku.ProductID] {
				return fmt.Errorf("facility %q: sku %d not in catalog", f.Name, sku.ProductID)
			}
			switch sku.Kind {
			case "produced", "purchased":
			default:
				return fmt.Errorf("facility %q sku %d: kind must be produced or purchased, got %q",
					f.Name, sku.ProductID, sku.Kind)
			}
			switch sku.Manufacture {
			case "", "simple", "sourced":
			default:
				return fmt.Errorf("facility %q sku %d: unknown manufacture variant %q",
					f.Name, sku.ProductID, sku.Manufacture)
			}
		}
	}

	for _, link := range s.Links {
		if !facilities[link.Upstream] {
			return fmt.Errorf("link for product %d: unknown upstream facility %d", link.ProductID, link.Upstream)
		}
		if !facilities[link.Downstream] {
			return fmt.Errorf("link for product %d: unknown downstream facility %d", link.ProductID, link.Downstream)
		}
		if !catalog[link.ProductID] {
			return fmt.Errorf("link %d -> %d: unknown product %d", link.Upstream, link.Downstream, link.ProductID)
		}
	}
	return nil
}
