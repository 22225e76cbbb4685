package database

import (
	"context"
	"database/sql"
)

// schema holds the idempotent table definitions for the application.  Every
// statement uses CREATE TABLE IF NOT EXISTS so that Bootstrap can run on
// every startup without clobbering existing data.  The unique key on
// room_availability (room_type_id, date) is what enforces the at-most-one
// record per day invariant for the availability ledger.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email           VARCHAR(255)    NOT NULL,
		password_hash   VARCHAR(255)    NOT NULL,
		first_name      VARCHAR(100)    NOT NULL DEFAULT '',
		last_name       VARCHAR(100)    NOT NULL DEFAULT '',
		phone_number    VARCHAR(32)     NULL,
		profile_picture VARCHAR(512)    NULL,
		role            VARCHAR(16)     NOT NULL DEFAULT 'CUSTOMER',
		is_active       TINYINT(1)      NOT NULL DEFAULT 1,
		created_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		revoked_at DATETIME        NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS hotels (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		owner_id    BIGINT UNSIGNED NOT NULL,
		name        VARCHAR(255)    NOT NULL,
		address     VARCHAR(512)    NOT NULL DEFAULT '',
		location    VARCHAR(255)    NOT NULL DEFAULT '',
		star_rating TINYINT         NOT NULL DEFAULT 0,
		logo        VARCHAR(512)    NULL,
		images      TEXT            NULL,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_hotels_owner (owner_id),
		KEY idx_hotels_location (location)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS room_types (
		id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		hotel_id             BIGINT UNSIGNED NOT NULL,
		name                 VARCHAR(255)    NOT NULL,
		amenities            TEXT            NULL,
		price_per_night_cents BIGINT         NOT NULL,
		current_availability INT             NOT NULL DEFAULT 0,
		images               TEXT            NULL,
		created_at           DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at           DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_room_types_hotel (hotel_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS room_availability (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		room_type_id BIGINT UNSIGNED NOT NULL,
		date         DATE            NOT NULL,
		availability INT             NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_room_availability_day (room_type_id, date)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS hotel_reservations (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id      BIGINT UNSIGNED NOT NULL,
		hotel_id     BIGINT UNSIGNED NOT NULL,
		room_type_id BIGINT UNSIGNED NOT NULL,
		check_in     DATE            NOT NULL,
		check_out    DATE            NOT NULL,
		price_cents  BIGINT          NOT NULL,
		status       VARCHAR(16)     NOT NULL DEFAULT 'CONFIRMED',
		itinerary_id BIGINT UNSIGNED NULL,
		created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_hotel_reservations_user (user_id),
		KEY idx_hotel_reservations_itinerary (itinerary_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS flight_reservations (
		id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id              BIGINT UNSIGNED NOT NULL,
		afs_booking_id       VARCHAR(64)     NOT NULL,
		outbound_depart_at   DATETIME        NOT NULL,
		outbound_origin      CHAR(3)         NOT NULL,
		outbound_arrive_at   DATETIME        NOT NULL,
		outbound_destination CHAR(3)         NOT NULL,
		return_depart_at     DATETIME        NULL,
		return_origin        CHAR(3)         NULL,
		return_arrive_at     DATETIME        NULL,
		return_destination   CHAR(3)         NULL,
		price_cents          BIGINT          NOT NULL,
		status               VARCHAR(16)     NOT NULL DEFAULT 'CONFIRMED',
		itinerary_id         BIGINT UNSIGNED NULL,
		created_at           DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at           DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_flight_reservations_user (user_id),
		KEY idx_flight_reservations_itinerary (itinerary_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS itineraries (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id          BIGINT UNSIGNED NOT NULL,
		total_price_cents BIGINT         NOT NULL DEFAULT 0,
		status           VARCHAR(16)     NOT NULL DEFAULT 'DRAFT',
		card_last4       VARCHAR(4)      NOT NULL DEFAULT '',
		card_expiry      VARCHAR(5)      NOT NULL DEFAULT '',
		booking_date     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_itineraries_user (user_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		content    TEXT            NOT NULL,
		is_read    TINYINT(1)      NOT NULL DEFAULT 0,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_notifications_user (user_id, is_read)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS cities (
		id      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name    VARCHAR(255)    NOT NULL,
		country VARCHAR(255)    NOT NULL,
		PRIMARY KEY (id),
		KEY idx_cities_name (name)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS airports (
		id      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		code    CHAR(3)         NOT NULL,
		name    VARCHAR(255)    NOT NULL,
		city    VARCHAR(255)    NOT NULL,
		country VARCHAR(255)    NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_airports_code (code),
		KEY idx_airports_city (city)
	) ENGINE=InnoDB`,
}

// Bootstrap applies the schema statements in order.  It is safe to call on
// every startup.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
