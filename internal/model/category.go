package model

import (
	"github.com/shopspring/decimal"
)

// Category identifies a building or unit component that CapEx can address.
type Category string

const (
	CategoryRoof        Category = "roof"
	CategoryFacade      Category = "facade"
	CategoryWindows     Category = "windows"
	CategoryHeating     Category = "heating"
	CategoryElectrical  Category = "electrical"
	CategoryPlumbing    Category = "plumbing"
	CategoryInsulation  Category = "insulation"
	CategoryElevator    Category = "elevator"
	CategoryCommonAreas Category = "common_areas"
	CategoryKitchen     Category = "kitchen"
	CategoryBathroom    Category = "bathroom"
	CategoryFlooring    Category = "flooring"
	CategoryOther       Category = "other"
)

// AreaBasis selects which area a component's renewal cost scales with.
type AreaBasis int

const (
	AreaLiving AreaBasis = iota
	AreaTotal
	AreaWindows
	AreaUnit
)

// CategoryProfile holds the reference data of a category.
type CategoryProfile struct {
	Category   Category
	CycleYears int
	// MaxUnitCost is the upper renewal cost per m² (or per window).
	MaxUnitCost decimal.Decimal
	Basis       AreaBasis
	UnitLevel   bool
}

var categoryProfiles = map[Category]CategoryProfile{
	CategoryRoof:        {CategoryRoof, 40, decimal.NewFromInt(120), AreaTotal, false},
	CategoryFacade:      {CategoryFacade, 40, decimal.NewFromInt(150), AreaTotal, false},
	CategoryWindows:     {CategoryWindows, 30, decimal.NewFromInt(900), AreaWindows, false},
	CategoryHeating:     {CategoryHeating, 20, decimal.NewFromInt(100), AreaLiving, false},
	CategoryElectrical:  {CategoryElectrical, 40, decimal.NewFromInt(80), AreaLiving, false},
	CategoryPlumbing:    {CategoryPlumbing, 40, decimal.NewFromInt(90), AreaLiving, false},
	CategoryInsulation:  {CategoryInsulation, 40, decimal.NewFromInt(110), AreaTotal, false},
	CategoryElevator:    {CategoryElevator, 25, decimal.NewFromInt(60), AreaTotal, false},
	CategoryCommonAreas: {CategoryCommonAreas, 20, decimal.NewFromInt(40), AreaTotal, false},
	CategoryKitchen:     {CategoryKitchen, 20, decimal.NewFromInt(250), AreaUnit, true},
	CategoryBathroom:    {CategoryBathroom, 25, decimal.NewFromInt(300), AreaUnit, true},
	CategoryFlooring:    {CategoryFlooring, 15, decimal.NewFromInt(70), AreaUnit, true},
	CategoryOther:       {CategoryOther, 30, decimal.NewFromInt(50), AreaLiving, false},
}

// Profile returns the reference data for c, falling back to CategoryOther.
func (c Category) Profile() CategoryProfile {
	if s, ok := categoryProfiles[c]; ok {
		return s
	}
	s := categoryProfiles[CategoryOther]
	s.Category = c
	return s
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryProfiles[c]
	return ok
}

// Categories lists the known categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryRoof, CategoryFacade, CategoryWindows, CategoryHeating,
		CategoryElectrical, CategoryPlumbing, CategoryInsulation, CategoryElevator,
		CategoryCommonAreas, CategoryKitchen, CategoryBathroom, CategoryFlooring,
		CategoryOther,
	}
}
