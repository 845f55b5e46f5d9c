package main

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	f, err := os.Open(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open seed file failed")
	}
	fixtures, err := app.LoadFixtures(f)
	_ = f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("load fixtures failed")
	}

	dsn, err := mysqlrepo.SessionDSN(cfg.MySQLDSN, cfg.LockTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid MYSQL_DSN")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	seeder := app.NewSeeder(app.NewCatalogService(repo.Hotels, repo.Rooms, cache), repo.Hotels)

	sem := semaphore.NewWeighted(int64(max(cfg.SeedWorkers, 1)))
	var wg sync.WaitGroup
	var created, failed atomic.Int64

	for _, fx := range fixtures {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(fx app.HotelFixture) {
			defer wg.Done()
			defer sem.Release(1)

			ok, err := seeder.Seed(ctx, fx)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("hotel", fx.Name).Err(err).Msg("seed failed")
				return
			}
			if ok {
				created.Add(1)
				log.Info().Str("hotel", fx.Name).Int("rooms", len(fx.Rooms)).Msg("seed ok")
			}
		}(fx)
	}

	wg.Wait()
	log.Info().
		Int("total", len(fixtures)).
		Int64("created", created.Load()).
		Int64("failed", failed.Load()).
		Msg("seeding completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}
