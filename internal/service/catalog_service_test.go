package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nkvtd/pc-forge/internal/model/entity"
	"github.com/nkvtd/pc-forge/internal/repository"
	"github.com/nkvtd/pc-forge/internal/testutil"
)

func setupCatalogTest(t *testing.T) (*CatalogService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewCatalogService(repos.Component, nil), repos
}

func cpuAttrs() map[string]interface{} {
	return map[string]interface{}{
		"socket":    "AM5",
		"cores":     8,
		"threads":   16,
		"baseClock": "4.2 GHz",
		"tdp":       "105 W",
	}
}

func createComponent(t *testing.T, svc *CatalogService, name, brand, typ, price string, attrs map[string]interface{}) *entity.Component {
	t.Helper()
	p, _ := decimal.NewFromString(price)
	comp, err := svc.Create(context.Background(), &CreateComponentRequest{
		Name:  name,
		Brand: brand,
		Price: p,
		Type:  typ,
		Attrs: attrs,
	})
	if err != nil {
		t.Fatalf("create component %q: %v", name, err)
	}
	return comp
}

func TestCreateComponentMissingRequiredField(t *testing.T) {
	svc, _ := setupCatalogTest(t)

	attrs := cpuAttrs()
	delete(attrs, "tdp")

	_, err := svc.Create(context.Background(), &CreateComponentRequest{
		Name:  "Ryzen 7 9700X",
		Brand: "AMD",
		Price: decimal.NewFromInt(359),
		Type:  "cpu",
		Attrs: attrs,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "tdp") {
		t.Errorf("error should name the missing field: %s", err.Error())
	}
}

func TestCreateComponentRejectsNonPositivePrice(t *testing.T) {
	svc, _ := setupCatalogTest(t)

	_, err := svc.Create(context.Background(), &CreateComponentRequest{
		Name:  "Free CPU",
		Brand: "AMD",
		Price: decimal.Zero,
		Type:  "cpu",
		Attrs: cpuAttrs(),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateComponentNoOrphanOnValidationFailure(t *testing.T) {
	svc, repos := setupCatalogTest(t)

	_, err := svc.Create(context.Background(), &CreateComponentRequest{
		Name:  "Broken",
		Brand: "AMD",
		Price: decimal.NewFromInt(100),
		Type:  "cpu",
		Attrs: map[string]interface{}{"socket": "AM5"},
	})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	result, err := svc.List(context.Background(), &ListComponentsQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 0 {
		t.Errorf("expected no base rows after failed create, got %d", result.Total)
	}
	_ = repos
}

func TestCreateComponentWithGroups(t *testing.T) {
	svc, _ := setupCatalogTest(t)

	comp := createComponent(t, svc, "Noctua NH-D15", "Noctua", "cooler", "109.90", map[string]interface{}{
		"coolerType": "air",
		"fanRPM":     "300-1500",
		"noiseLevel": "24.6 dB",
		"cpuSockets": []interface{}{"AM5", "LGA1700"},
	})

	got, err := svc.Get(context.Background(), comp.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Spec == nil {
		t.Fatal("expected spec row")
	}
	if got.Spec.Attrs["coolerType"] != "air" {
		t.Errorf("expected scalar attr coolerType=air, got %v", got.Spec.Attrs["coolerType"])
	}
	if _, present := got.Spec.Attrs["cpuSockets"]; present {
		t.Error("group values must not land in the scalar spec")
	}
	if len(got.GroupValues) != 2 {
		t.Fatalf("expected 2 group rows, got %d", len(got.GroupValues))
	}
	for _, gv := range got.GroupValues {
		if gv.GroupKey != "cpuSockets" {
			t.Errorf("unexpected group key %q", gv.GroupKey)
		}
	}
}

func TestGetComponentNotFound(t *testing.T) {
	svc, _ := setupCatalogTest(t)

	_, err := svc.Get(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListComponentsFilters(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	createComponent(t, svc, "Ryzen 7 9700X", "AMD", "cpu", "359.00", cpuAttrs())
	createComponent(t, svc, "Core i5-14600K", "Intel", "cpu", "289.00", map[string]interface{}{
		"socket": "LGA1700", "cores": 14, "threads": 20, "baseClock": "3.5 GHz", "tdp": "125 W",
	})
	createComponent(t, svc, "RTX 4070", "NVIDIA", "gpu", "549.00", map[string]interface{}{
		"chipset": "AD104", "memory": "12 GB", "memoryType": "GDDR6X", "coreClock": "1920 MHz", "tdp": "200 W",
	})

	// Type filter
	result, err := svc.List(ctx, &ListComponentsQuery{Type: "cpu"})
	if err != nil {
		t.Fatalf("list cpus: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("expected 2 cpus, got %d", result.Total)
	}

	// Brand filter
	result, err = svc.List(ctx, &ListComponentsQuery{Brands: []string{"AMD", "NVIDIA"}})
	if err != nil {
		t.Fatalf("list by brand: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("expected 2 components for AMD+NVIDIA, got %d", result.Total)
	}

	// Price range
	min := decimal.NewFromInt(300)
	result, err = svc.List(ctx, &ListComponentsQuery{MinPrice: &min})
	if err != nil {
		t.Fatalf("list by price: %v", err)
	}
	if result.Total != 2 {
		t.Errorf("expected 2 components at or above 300, got %d", result.Total)
	}

	// Case-insensitive name search
	result, err = svc.List(ctx, &ListComponentsQuery{Query: "ryzen"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("expected 1 match for ryzen, got %d", result.Total)
	}

	// Unknown type
	_, err = svc.List(ctx, &ListComponentsQuery{Type: "toaster"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown type, got %v", err)
	}
}

func TestListComponentsDefaultSortPriceDesc(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	createComponent(t, svc, "Cheap", "A", "cables", "5.00", map[string]interface{}{
		"cableType": "SATA", "length": "0.5m",
	})
	createComponent(t, svc, "Mid", "B", "cables", "15.00", map[string]interface{}{
		"cableType": "HDMI", "length": "2m",
	})
	createComponent(t, svc, "Pricey", "C", "cables", "45.00", map[string]interface{}{
		"cableType": "Thunderbolt", "length": "1m",
	})

	result, err := svc.List(ctx, &ListComponentsQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(result.Items))
	}
	if result.Items[0].Name != "Pricey" || result.Items[2].Name != "Cheap" {
		t.Errorf("expected price DESC ordering, got %s..%s", result.Items[0].Name, result.Items[2].Name)
	}

	result, err = svc.List(ctx, &ListComponentsQuery{Sort: "price_asc"})
	if err != nil {
		t.Fatalf("list asc: %v", err)
	}
	if result.Items[0].Name != "Cheap" {
		t.Errorf("expected price ASC ordering, got %s first", result.Items[0].Name)
	}
}

func TestUpdateComponentBaseFields(t *testing.T) {
	svc, _ := setupCatalogTest(t)
	ctx := context.Background()

	comp := createComponent(t, svc, "Ryzen 7 9700X", "AMD", "cpu", "359.00", cpuAttrs())

	newPrice := decimal.NewFromInt(329)
	updated, err := svc.Update(ctx, comp.ID, &UpdateComponentRequest{
		Name:  "Ryzen 7 9700X (rev 2)",
		Price: &newPrice,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ryzen 7 9700X (rev 2)" {
		t.Errorf("name not updated: %s", updated.Name)
	}
	if !updated.Price.Equal(newPrice) {
		t.Errorf("price not updated: %s", updated.Price)
	}

	// Spec survives base edits
	got, err := svc.Get(ctx, comp.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Spec == nil || got.Spec.Attrs["socket"] != "AM5" {
		t.Error("spec row must survive base-field updates")
	}
}

func TestUpdateComponentNotFound(t *testing.T) {
	svc, _ := setupCatalogTest(t)

	_, err := svc.Update(context.Background(), "missing", &UpdateComponentRequest{Name: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
