// Package performance provides benchmarks for the calculator hot paths
//go:build performance
// +build performance

package performance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/burgermaster/blendcalc/internal/application/calculator"
	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/infrastructure/config"
	"github.com/burgermaster/blendcalc/internal/infrastructure/http/apiserver"
	"github.com/burgermaster/blendcalc/internal/infrastructure/monitoring"
	gormstore "github.com/burgermaster/blendcalc/internal/infrastructure/persistence/gorm"
	"github.com/burgermaster/blendcalc/internal/infrastructure/persistence/memory"
	"github.com/burgermaster/blendcalc/internal/infrastructure/persistence/sqlite"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/burgermaster/blendcalc/test/testutils"
)

// Batch sizes exercised by the domain benchmarks
var batchSizes = []int{1, 30, 1000}

// Domain Layer Performance Tests

func BenchmarkCompute(b *testing.B) {
	factory := testutils.NewRecipeFactory(42)
	recipe := factory.CreateRecipe()
	recipe.Meats = factory.CreateMeats(6)

	for _, units := range batchSizes {
		b.Run(fmt.Sprintf("Units%d", units), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = blend.Compute(recipe, units)
			}
		})
	}
}

func BenchmarkComputeCosts(b *testing.B) {
	factory := testutils.NewRecipeFactory(42)
	recipe := factory.CreateRecipe()
	prices := factory.Prices(recipe)
	result := blend.Compute(recipe, 30)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = blend.ComputeCosts(result, prices, 30, 35)
	}
}

func BenchmarkRenderProductionSheet(b *testing.B) {
	report := calculator.BuildReport(calculator.DefaultState())
	opts := calculator.SheetOptions{ID: "BENCH0001", IssuedAt: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = calculator.RenderProductionSheet(report, opts)
	}
}

// Application Layer Performance Tests

func BenchmarkStateMutation(b *testing.B) {
	stores := map[string]func(b *testing.B) outbound.StateStore{
		"Memory": func(b *testing.B) outbound.StateStore {
			return memory.NewStateStore()
		},
		"SQLite": func(b *testing.B) outbound.StateStore {
			db, err := sqlite.SetupDatabase(filepath.Join(b.TempDir(), "bench.db"), logger.Silent)
			require.NoError(b, err)
			b.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			})
			return gormstore.NewStateStore(db)
		},
	}

	for name, newStore := range stores {
		b.Run(name, func(b *testing.B) {
			service := calculator.NewService(newStore(b), new(testutils.MockBlendAI), zap.NewNop())
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := service.SetUnits(ctx, i%500); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// HTTP Layer Performance Tests

func BenchmarkCalculateEndpoint(b *testing.B) {
	cfg := &config.Config{
		App:    config.AppConfig{Version: "bench"},
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
	}
	reg := prometheus.NewRegistry()
	service := calculator.NewService(memory.NewStateStore(), new(testutils.MockBlendAI), zap.NewNop())
	server := apiserver.NewAPIServer(cfg, zap.NewNop(), service, nil, monitoring.NewMetricsCollector(reg, reg, zap.NewNop()))
	handler := server.Handler()

	body := `{"recipe":{"name":"Bench","fatRatio":0.2,"unitWeight":150,"meats":[{"name":"Acem","ratio":0.6},{"name":"Peito","ratio":0.4}]},"units":100,"prices":{"Acem":38.9,"Peito":42.5},"sellingPrice":32}`

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
	}
}
