package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/shopfront/internal/domain"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/filter"
	"github.com/kailas-cloud/shopfront/internal/domain/catalog/page"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

func parentOf(id product.CategoryID) *product.CategoryID { return &id }

func testSnapshot() Snapshot {
	return Snapshot{
		Categories: []product.Category{
			{ID: 1, Name: "Electronics"},
			{ID: 2, Name: "Phones", ParentID: parentOf(1)},
			{ID: 3, Name: "Books"},
			{ID: 4, Name: "Empty"},
		},
		Products: []product.Product{
			{ProductID: "e1", Name: "Speaker", Price: 50, Category: 1, InStock: true},
			{ProductID: "p1", Name: "Phone", Price: 500, Category: 2, InStock: true},
			{ProductID: "p2", Name: "Phone Mini", Price: 300, Category: 2},
			{ProductID: "b1", Name: "Novel", Price: 15, Category: 3, InStock: true},
		},
	}
}

func TestFetchPage(t *testing.T) {
	r := New(testSnapshot())
	f := filter.Default()
	f.InStock = true

	res, err := r.FetchPage(context.Background(), f, page.MustRequest(1, 2))
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if res.Total != 3 || len(res.Items) != 2 || !res.HasNext {
		t.Errorf("res = total:%d items:%d hasNext:%v", res.Total, len(res.Items), res.HasNext)
	}
}

func TestFetchByCategory(t *testing.T) {
	r := New(testSnapshot())
	ctx := context.Background()
	req := page.MustRequest(1, 10)

	tests := []struct {
		name    string
		id      product.CategoryID
		want    int
		wantErr error
	}{
		{"includes subcategories", 1, 3, nil},
		{"leaf", 2, 2, nil},
		{"known but empty", 4, 0, nil},
		{"unknown", 99, 0, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.FetchByCategory(ctx, tt.id, filter.Default(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if res.Total != tt.want {
				t.Errorf("Total = %d, want %d", res.Total, tt.want)
			}
		})
	}
}

func TestFetch_LatencyHonorsContext(t *testing.T) {
	r := New(testSnapshot(), WithLatency(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.FetchPage(ctx, filter.Default(), page.MustRequest(1, 10))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestProduct(t *testing.T) {
	r := New(testSnapshot())
	p, err := r.Product(context.Background(), "b1")
	if err != nil || p.Name != "Novel" {
		t.Fatalf("Product(b1) = %+v, %v", p, err)
	}
	if _, err := r.Product(context.Background(), "zz"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Product(zz) err = %v", err)
	}
}

func TestMenu_TopLevelOnly(t *testing.T) {
	menu := New(testSnapshot()).Menu()
	if len(menu) != 3 {
		t.Fatalf("menu = %+v", menu)
	}
	if menu[0].Label != "Electronics" || menu[0].Path != "/categories/1" || *menu[0].CategoryID != 1 {
		t.Errorf("menu[0] = %+v", menu[0])
	}
}

func TestSample(t *testing.T) {
	s := Sample()
	if len(s.Products) < 20 || len(s.Categories) == 0 {
		t.Fatalf("sample has %d products, %d categories", len(s.Products), len(s.Categories))
	}
	r := New(s)
	res, err := r.FetchPage(context.Background(), filter.Default(), page.MustRequest(1, 10))
	if err != nil || len(res.Items) != 10 {
		t.Fatalf("FetchPage over sample: %d items, %v", len(res.Items), err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"products":[{"productId":"a","productName":"A"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := Load(good)
	if err != nil || len(s.Products) != 1 {
		t.Fatalf("Load(good) = %+v, %v", s, err)
	}

	dup := filepath.Join(dir, "dup.json")
	if err := os.WriteFile(dup, []byte(`{"products":[{"productId":"a"},{"productId":"a"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dup); err == nil {
		t.Error("duplicate ids accepted")
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file accepted")
	}
	if s, err := Load(""); err != nil || len(s.Products) == 0 {
		t.Errorf("Load(\"\") = %d products, %v", len(s.Products), err)
	}
}
