package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	s := Defaults(0)
	assert.Equal(t, All, s.Category)
	assert.Equal(t, All, s.PetType)
	assert.Equal(t, All, s.Breed)
	assert.Equal(t, SortNewest, s.SortBy)
	assert.Equal(t, 0, s.PriceMin)
	assert.Equal(t, DefaultPriceCeiling, s.PriceMax)
	assert.False(t, s.FavoritesOnly)

	assert.Equal(t, 1000, Defaults(1000).PriceMax)
}

func TestWithPetType_ResetsBreed(t *testing.T) {
	s := Defaults(0).WithPetType("dog").WithBreed("Labrador")
	assert.Equal(t, "Labrador", s.Breed)

	s = s.WithPetType("cat")
	assert.Equal(t, "cat", s.PetType)
	assert.Equal(t, All, s.Breed)

	// Re-selecting the same type still resets.
	s = s.WithBreed("Siamese").WithPetType("cat")
	assert.Equal(t, All, s.Breed)
}

func TestWithBreed_IgnoredWithoutPetType(t *testing.T) {
	s := Defaults(0).WithBreed("Labrador")
	assert.Equal(t, All, s.Breed)

	s = Defaults(0).WithPetType("dog").WithBreed("  ")
	assert.Equal(t, All, s.Breed)
}

func TestWithPrice_Clamps(t *testing.T) {
	s := Defaults(1000).WithPriceMin(-5)
	assert.Equal(t, 0, s.PriceMin)

	s = s.WithPriceMin(5000)
	assert.Equal(t, 1000, s.PriceMin)

	s = Defaults(1000).WithPriceMin(300).WithPriceMax(100)
	assert.Equal(t, 300, s.PriceMax)

	s = Defaults(1000).WithPriceMax(90000)
	assert.Equal(t, 90000, s.PriceMax, "no upper cap")
	assert.LessOrEqual(t, s.PriceMin, s.PriceMax)
}

func TestTransitions_RejectUnknownValues(t *testing.T) {
	base := Defaults(0)
	assert.Equal(t, base, base.WithCategory("reptile"))
	assert.Equal(t, base, base.WithPetType("hamster"))
	assert.Equal(t, base, base.WithSortBy("cheapest"))
	assert.Equal(t, base, base.WithSupplyCondition("broken"))
}

func TestWithCategory_KeepsSubFilters(t *testing.T) {
	s := Defaults(0).WithPetType("dog").WithBreed("Labrador").WithCategory("supply").WithCategory("pet")
	assert.Equal(t, "dog", s.PetType)
	assert.Equal(t, "Labrador", s.Breed)
}

func TestWithLocation_BlankMeansAll(t *testing.T) {
	assert.Equal(t, All, Defaults(0).WithLocation("   ").Location)
	assert.Equal(t, "Austin", Defaults(0).WithLocation(" Austin ").Location)
}

func TestNormalize_RepairsUnreachableStates(t *testing.T) {
	defaults := Defaults(1000)
	raw := FilterState{
		Category:        "bogus",
		PetType:         All,
		Breed:           "Labrador",
		SupplyCondition: "new",
		SortBy:          "",
		PriceMin:        800,
		PriceMax:        200,
		Location:        "",
	}
	s := raw.Normalize(defaults)
	assert.Equal(t, All, s.Category)
	assert.Equal(t, All, s.Breed)
	assert.Equal(t, "new", s.SupplyCondition)
	assert.Equal(t, SortNewest, s.SortBy)
	assert.Equal(t, All, s.Location)
	assert.Equal(t, 200, s.PriceMax)
	assert.Equal(t, 200, s.PriceMin)
}

func TestNormalize_MinAboveDefaultCeiling(t *testing.T) {
	s := FilterState{PriceMin: 2000, PriceMax: 5000}.Normalize(Defaults(1000))
	assert.Equal(t, 2000, s.PriceMin)
	assert.Equal(t, 5000, s.PriceMax)
}
