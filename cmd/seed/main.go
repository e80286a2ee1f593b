package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tailor-pos/api/internal/auth"
	"github.com/tailor-pos/api/internal/config"
	"github.com/tailor-pos/api/internal/database"
	"github.com/tailor-pos/api/internal/enum"
	"github.com/tailor-pos/api/internal/pricing"
	"go.uber.org/zap"
)

// defaultPrices is the starting price list in KWD.
var defaultPrices = []struct {
	key   pricing.PriceKey
	value string
	desc  string
}{
	{pricing.KeyStitchingStandard, "9", "Standard stitching"},
	{pricing.KeyStitchingDesign, "9", "Design stitching"},
	{pricing.KeyDesignStyle, "10", "Design style"},
	{pricing.KeyLine, "0.5", "Line (per line)"},
	{pricing.KeyHomeDelivery, "2", "Home delivery"},
	{pricing.KeyExpress, "3", "Express surcharge"},
	{pricing.CollarStandard, "0", "Standard collar"},
	{pricing.CollarJapanese, "1", "Japanese collar"},
	{pricing.CollarDown, "1", "Down collar"},
	{pricing.CollarStand, "1", "Stand collar"},
	{pricing.ButtonTabbagi, "0.5", "Tabbagi button"},
	{pricing.ButtonAraviZarrar, "1", "Aravi zarrar"},
	{pricing.ButtonZarrarTabbagi, "1.5", "Zarrar and tabbagi"},
	{pricing.JabzourBainMurabba, "1", "Bain murabba jabzour"},
	{pricing.JabzourMagfiMurabba, "1", "Magfi murabba jabzour"},
	{pricing.JabzourShaab, "0.5", "Shaab jabzour"},
	{pricing.JabzourZipper, "1.5", "Zipper jabzour"},
	{pricing.PocketMudawwar, "0.5", "Round front pocket"},
	{pricing.PocketMurabba, "0.5", "Square front pocket"},
	{pricing.PocketMuthallath, "0.5", "Triangle front pocket"},
	{pricing.CuffDoubleGumsha, "1", "Double gumsha cuff"},
	{pricing.CuffMurabbaKabak, "1", "Square kabak cuff"},
	{pricing.CuffMuthallathKabak, "1", "Triangle kabak cuff"},
	{pricing.CuffMudawarKabak, "1", "Round kabak cuff"},
	{pricing.CuffNone, "0", "No cuff"},
}

func main() {
	brand := flag.String("brand", "", "Brand to seed (defaults to DEFAULT_BRAND)")
	name := flag.String("name", "Shop Manager", "Name of the seeded employee")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *brand == "" {
		*brand = cfg.DefaultBrand
	}
	if *brand == "" {
		log.Fatal("brand is required: pass -brand or set DEFAULT_BRAND")
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Unable to connect to database", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Unable to ping database", zap.Error(err))
	}

	// Seed in a transaction so a partial price list is never left behind.
	tx, err := pool.Begin(ctx)
	if err != nil {
		logger.Fatal("Failed to begin transaction", zap.Error(err))
	}
	defer tx.Rollback(ctx)

	q := database.New(pool).WithTx(tx)
	if err := seedPrices(ctx, q); err != nil {
		logger.Fatal("Failed to seed prices", zap.Error(err))
	}
	employeeID, err := seedEmployee(ctx, tx, *brand, *name)
	if err != nil {
		logger.Fatal("Failed to seed employee", zap.Error(err))
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Fatal("Failed to commit", zap.Error(err))
	}

	token, err := auth.GenerateToken(cfg.JWTSecret, employeeID, *brand, enum.RoleManager, auth.DefaultTTL)
	if err != nil {
		logger.Fatal("Failed to issue session token", zap.Error(err))
	}

	logger.Info("Seed completed",
		zap.String("brand", *brand),
		zap.Int("prices", len(defaultPrices)),
		zap.String("employee_id", employeeID.String()),
	)
	fmt.Println(token)
}

func seedPrices(ctx context.Context, q *database.Queries) error {
	for _, p := range defaultPrices {
		var value pgtype.Numeric
		if err := value.Scan(p.value); err != nil {
			return fmt.Errorf("price %s: %w", p.key, err)
		}
		if _, err := q.UpsertPrice(ctx, database.UpsertPriceParams{
			Key:         string(p.key),
			Value:       value,
			Description: pgtype.Text{String: p.desc, Valid: true},
		}); err != nil {
			return fmt.Errorf("upsert %s: %w", p.key, err)
		}
	}
	return nil
}

// seedEmployee creates the manager employee if it doesn't exist.
func seedEmployee(ctx context.Context, tx pgx.Tx, brand, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM employees WHERE brand = $1 AND name = $2 LIMIT 1`, brand, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check employee: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO employees (brand, name, role) VALUES ($1, $2, 'manager') RETURNING id`,
		brand, name,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert employee: %w", err)
	}
	return id, nil
}
