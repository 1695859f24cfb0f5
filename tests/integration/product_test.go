//go:build integration

package integration

import (
	"net/http"
	"net/url"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 4 {
		t.Fatalf("expected at least 4 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	oud := findProduct(t, "Oud Royale")

	if oud.ID == "" {
		t.Error("id is empty")
	}
	if oud.Brand != "Imperial House" {
		t.Errorf("brand: got %q, want %q", oud.Brand, "Imperial House")
	}
	if oud.Category != "fragrance" {
		t.Errorf("category: got %q, want %q", oud.Category, "fragrance")
	}
	if oud.Price != 320.0 {
		t.Errorf("price: got %v, want 320.0", oud.Price)
	}
	if len(oud.Notes) == 0 {
		t.Error("notes is empty")
	}
}

func TestListProducts_NameFilter(t *testing.T) {
	resp := doGet(t, "/products?q="+url.QueryEscape("oud"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Name != "Oud Royale" {
		t.Errorf("name: got %q, want %q", products[0].Name, "Oud Royale")
	}
}

func TestListProducts_BrandFilter(t *testing.T) {
	resp := doGet(t, "/products?brand="+url.QueryEscape("maison"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	for _, p := range products {
		if p.Brand != "Maison Étoile" {
			t.Errorf("brand: got %q, want %q", p.Brand, "Maison Étoile")
		}
	}
}

func TestListProducts_NoMatch(t *testing.T) {
	resp := doGet(t, "/products?q=nonexistent-perfume")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 0 {
		t.Fatalf("expected empty list, got %d", len(products))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	resp := doPost(t, "/seed", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	seeded := decodeJSON[seedResponse](t, resp)
	if seeded.Seeded {
		t.Errorf("second seed run should be a no-op, got seeded=true inserted=%d", seeded.Inserted)
	}
}
