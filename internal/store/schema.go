package store

// schemaStatements are executed in order by EnsureSchema. Every statement is
// create-if-absent so the schema can be applied on every process start.
//
// The fuel unique index includes fetched_at: a price may legitimately return
// to an earlier value, and change-detection against the latest row is what
// suppresses repeats. The gold index covers the full triple only.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS fuel_prices (
		id BIGSERIAL PRIMARY KEY,
		fuel_type TEXT NOT NULL,
		price BIGINT NOT NULL,
		source TEXT NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_fuel_price_change
		ON fuel_prices (fuel_type, price, fetched_at)`,
	`CREATE INDEX IF NOT EXISTS idx_fuel_prices_latest
		ON fuel_prices (fuel_type, fetched_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS gold_prices (
		id BIGSERIAL PRIMARY KEY,
		mid_price BIGINT NOT NULL,
		buy_price BIGINT NOT NULL,
		sell_price BIGINT NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_gold_price_change
		ON gold_prices (mid_price, buy_price, sell_price)`,
}

const (
	sqlLockFuel = `SELECT pg_advisory_xact_lock(hashtext($1))`

	sqlLatestFuelPrice = `
		SELECT price FROM fuel_prices
		WHERE fuel_type = $1
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1`

	sqlInsertFuel = `
		INSERT INTO fuel_prices (fuel_type, price, source, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`

	// $1 = 1 for the latest row per fuel type, 2 for the previous one.
	sqlFuelAtRank = `
		SELECT fuel_type, price, source, fetched_at FROM (
			SELECT fuel_type, price, source, fetched_at,
				ROW_NUMBER() OVER (PARTITION BY fuel_type ORDER BY fetched_at DESC, id DESC) AS rn
			FROM fuel_prices
		) ranked
		WHERE rn = $1
		ORDER BY fuel_type`

	sqlInsertGold = `
		INSERT INTO gold_prices (mid_price, buy_price, sell_price, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`

	// $1 = 0 for the latest row, 1 for the previous one.
	sqlGoldAtOffset = `
		SELECT mid_price, buy_price, sell_price, fetched_at
		FROM gold_prices
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1 OFFSET $1`
)
