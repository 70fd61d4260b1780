package migrate

import (
	"context"

	"sandwich-shop-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto
	CreateChecks           bool // CHECK constraints
	CreateIndexes          bool // indexes and UNIQUEs
	CreateFKsViaSQL        bool // FKs via Exec after AutoMigrate
	CreateUpdatedAtTrigger bool // updated_at triggers
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateStorefrontDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("starting storefront schema migration")

	if opt.CreateExtensions {
		if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("pgcrypto error", zap.Error(err))
			return err
		}
	}

	log.Info("creating tables: locations, products, drops, drop_products, clients, orders, order_products")
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Location{},
		&models.Product{},
		&models.Drop{},
		&models.DropProduct{},
		&models.Client{},
		&models.Order{},
		&models.OrderProduct{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := db.WithContext(ctx).Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_drops_updated ON drops;
CREATE TRIGGER trg_drops_updated BEFORE UPDATE ON drops
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_drop_products_updated ON drop_products;
CREATE TRIGGER trg_drop_products_updated BEFORE UPDATE ON drop_products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("triggers error", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		// Counters must never go negative. reserved <= stock is deliberately
		// NOT a CHECK: retiring a menu row zeroes its stock while existing
		// orders keep their reservations. The reserve path enforces the upper
		// bound instead.
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE drop_products
	DROP CONSTRAINT IF EXISTS chk_drop_products_non_negative,
	ADD CONSTRAINT chk_drop_products_non_negative
	CHECK (stock_quantity >= 0 AND reserved_quantity >= 0);
`).Error; err != nil {
			log.Error("chk drop_products", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE drop_products
	DROP CONSTRAINT IF EXISTS chk_drop_products_price_non_negative,
	ADD CONSTRAINT chk_drop_products_price_non_negative
	CHECK (selling_price_cents >= 0);
`).Error; err != nil {
			log.Error("chk drop_products.price", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_products
	DROP CONSTRAINT IF EXISTS chk_order_products_quantity_gt_zero,
	ADD CONSTRAINT chk_order_products_quantity_gt_zero
	CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("chk order_products.quantity", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE drops
	DROP CONSTRAINT IF EXISTS chk_drops_status_allowed,
	ADD CONSTRAINT chk_drops_status_allowed
	CHECK (status IN ('upcoming','active','completed','cancelled'));
`).Error; err != nil {
			log.Error("chk drops.status", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_status_allowed,
	ADD CONSTRAINT chk_orders_status_allowed
	CHECK (status IN ('pending','confirmed','completed','cancelled'));
`).Error; err != nil {
			log.Error("chk orders.status", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		// One ledger row per (drop, product); one order number per drop.
		if err := db.WithContext(ctx).Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_drop_products_drop_product
ON drop_products (drop_id, product_id);
`).Error; err != nil {
			log.Error("ux drop_products", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_drop_number
ON orders (drop_id, order_number);
`).Error; err != nil {
			log.Error("ux orders drop_number", zap.Error(err))
			return err
		}

		// payment_intent_id is the webhook idempotency key; unique when set.
		if err := db.WithContext(ctx).Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_payment_intent
ON orders (payment_intent_id) WHERE payment_intent_id IS NOT NULL;
`).Error; err != nil {
			log.Error("ux orders payment_intent", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
CREATE INDEX IF NOT EXISTS ix_drops_status_changed
ON drops (status, status_changed_at DESC);
`).Error; err != nil {
			log.Error("ix drops status_changed", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_drop_created
ON orders (drop_id, created_at DESC);
`).Error; err != nil {
			log.Error("ix orders drop_created", zap.Error(err))
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE drops
  DROP CONSTRAINT IF EXISTS fk_drops_location,
  ADD CONSTRAINT fk_drops_location
    FOREIGN KEY (location_id) REFERENCES locations(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("fk drops.location_id", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE drop_products
  DROP CONSTRAINT IF EXISTS fk_drop_products_drop,
  ADD CONSTRAINT fk_drop_products_drop
    FOREIGN KEY (drop_id) REFERENCES drops(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("fk drop_products.drop_id", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE drop_products
  DROP CONSTRAINT IF EXISTS fk_drop_products_product,
  ADD CONSTRAINT fk_drop_products_product
    FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("fk drop_products.product_id", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_drop,
  ADD CONSTRAINT fk_orders_drop
    FOREIGN KEY (drop_id) REFERENCES drops(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("fk orders.drop_id", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_client,
  ADD CONSTRAINT fk_orders_client
    FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("fk orders.client_id", zap.Error(err))
			return err
		}

		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS fk_order_products_order,
  ADD CONSTRAINT fk_order_products_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("fk order_products.order_id", zap.Error(err))
			return err
		}

		// RESTRICT keeps historical orders pointing at a live ledger row; the
		// menu editor zeroes stock instead of deleting referenced rows.
		if err := db.WithContext(ctx).Exec(`
ALTER TABLE order_products
  DROP CONSTRAINT IF EXISTS fk_order_products_drop_product,
  ADD CONSTRAINT fk_order_products_drop_product
    FOREIGN KEY (drop_product_id) REFERENCES drop_products(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("fk order_products.drop_product_id", zap.Error(err))
			return err
		}
	}

	log.Info("storefront schema migration finished")
	return nil
}
